package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/object"
)

// Server exposes a dispatch table's generics as a dynamic gRPC service.
// Each unary RPC method name is treated as a generic name: the request
// message becomes a record, tagged with the vector from its "class" field,
// and the dispatch result fills the response message.
type Server struct {
	grpc   *grpc.Server
	table  *dispatch.Table
	logger *slog.Logger
}

func NewServer(tbl *dispatch.Table, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		grpc:   grpc.NewServer(),
		table:  tbl,
		logger: logger,
	}
}

// RegisterService wires every unary method of the named proto service to
// the table. Streaming methods are skipped.
func (s *Server) RegisterService(reg *Registry, serviceName string) error {
	sd, err := reg.FindService(serviceName)
	if err != nil {
		return err
	}

	svcDesc := &grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    sd.GetFile().GetName(),
	}

	handler := &dispatchHandler{table: s.table, logger: s.logger}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			s.logger.Warn("skipping streaming method", "method", method.GetFullyQualifiedName())
			continue
		}
		md := method
		svcDesc.Methods = append(svcDesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				h := srv.(*dispatchHandler)
				return h.handleUnary(ctx, md, dec)
			},
		})
	}

	s.grpc.RegisterService(svcDesc, handler)
	return nil
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

type dispatchHandler struct {
	table  *dispatch.Table
	logger *slog.Logger
}

func (h *dispatchHandler) handleUnary(ctx context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	inMsg := dynamic.NewMessage(md.GetInputType())
	if err := dec(inMsg); err != nil {
		return nil, err
	}

	var value dispatch.Object = messageToRecord(inMsg)
	if classes := classesFromMessage(inMsg, config.ClassFieldName); len(classes) > 0 {
		value = object.Tag(value, classes)
	}

	generic := md.GetName()
	result, err := h.table.Dispatch(generic, value)
	if err != nil {
		h.logger.Warn("remote dispatch failed", "generic", generic, "err", err)
		return nil, fmt.Errorf("dispatch %s: %w", generic, err)
	}

	outMsg := dynamic.NewMessage(md.GetOutputType())
	if err := recordToMessage(result, outMsg); err != nil {
		return nil, fmt.Errorf("encode %s response: %w", generic, err)
	}
	return outMsg, nil
}
