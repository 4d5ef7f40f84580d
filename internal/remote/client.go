package remote

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/object"
)

// Dial opens a client connection to a remote method host.
func Dial(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// NewMethod builds a dispatch method backed by the RPC at methodPath.
//
// The dispatched value must be a record (tagged or not); its fields fill
// the RPC's input message, and the value's class vector is written to the
// input's "class" field when the schema declares one. The response message
// comes back as a record. Extra dispatch arguments are not carried over
// the wire: a remote endpoint sees exactly one message.
func NewMethod(conn *grpc.ClientConn, reg *Registry, methodPath string) (dispatch.Method, error) {
	md, err := reg.FindMethod(methodPath)
	if err != nil {
		return nil, err
	}
	if md.IsClientStreaming() || md.IsServerStreaming() {
		return nil, fmt.Errorf("method %q is streaming, remote methods must be unary", methodPath)
	}
	fullPath := methodPath
	if fullPath[0] != '/' {
		fullPath = "/" + fullPath
	}

	return func(fr *dispatch.Frame, value dispatch.Object, args []dispatch.Object) (dispatch.Object, error) {
		reqMsg := dynamic.NewMessage(md.GetInputType())
		if err := recordToMessage(value, reqMsg); err != nil {
			return nil, fmt.Errorf("remote %s: build request: %w", methodPath, err)
		}
		setClassesOnMessage(reqMsg, config.ClassFieldName, object.ClassesOf(value))

		respMsg := dynamic.NewMessage(md.GetOutputType())
		if err := conn.Invoke(context.Background(), fullPath, reqMsg, respMsg); err != nil {
			return nil, fmt.Errorf("remote %s: %w", methodPath, err)
		}
		return messageToRecord(respMsg), nil
	}, nil
}

// Bind registers every remote method of a manifest-style endpoint list on
// the table, sharing one connection per target.
type Endpoint struct {
	Generic string
	Class   string
	Target  string
	Method  string
}

func Bind(tbl *dispatch.Table, reg *Registry, endpoints []Endpoint) (closeAll func(), err error) {
	conns := make(map[string]*grpc.ClientConn)
	closeAll = func() {
		for _, c := range conns {
			_ = c.Close()
		}
	}

	for _, ep := range endpoints {
		conn, ok := conns[ep.Target]
		if !ok {
			conn, err = Dial(ep.Target)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("dial %s: %w", ep.Target, err)
			}
			conns[ep.Target] = conn
		}
		m, err := NewMethod(conn, reg, ep.Method)
		if err != nil {
			closeAll()
			return nil, err
		}
		tbl.RegisterMethod(ep.Generic, ep.Class, m)
	}
	return closeAll, nil
}
