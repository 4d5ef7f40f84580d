// Package remote backs dispatch methods with gRPC endpoints. Proto files
// are parsed at runtime and messages are built dynamically, so no generated
// stubs are involved: a remote method marshals the dispatched record into
// the RPC's input message, invokes it, and converts the response back into
// a record. The serve side is the mirror image, exposing a table's generics
// as a dynamic gRPC service.
package remote

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// Registry holds parsed proto descriptors. It is an explicit value rather
// than process-global state, so independent dispatch systems can load
// different schemas.
type Registry struct {
	mu    sync.RWMutex
	files map[string]*desc.FileDescriptor
}

func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*desc.FileDescriptor)}
}

// LoadProtos parses proto files and registers their descriptors.
// importPaths defaults to the current directory.
func (r *Registry) LoadProtos(importPaths []string, filenames ...string) error {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(filenames...)
	if err != nil {
		return fmt.Errorf("parse proto: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fd := range fds {
		r.files[fd.GetName()] = fd
	}
	return nil
}

// LoadProtoSource parses proto source held in memory, keyed by filename.
func (r *Registry) LoadProtoSource(sources map[string]string) error {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	parser := protoparse.Parser{Accessor: protoparse.FileContentsFromMap(sources)}
	fds, err := parser.ParseFiles(names...)
	if err != nil {
		return fmt.Errorf("parse proto: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fd := range fds {
		r.files[fd.GetName()] = fd
	}
	return nil
}

// FindMethod resolves a "package.Service/Method" path against the loaded
// descriptors.
func (r *Registry) FindMethod(path string) (*desc.MethodDescriptor, error) {
	serviceName, methodName, ok := splitMethodPath(path)
	if !ok {
		return nil, fmt.Errorf("invalid method path %q, expected \"package.Service/Method\"", path)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fd := range r.files {
		if svc := fd.FindService(serviceName); svc != nil {
			if method := svc.FindMethodByName(methodName); method != nil {
				return method, nil
			}
		}
	}
	return nil, fmt.Errorf("method %q not found (did you load the proto?)", path)
}

// FindService resolves a service by simple or fully qualified name.
func (r *Registry) FindService(name string) (*desc.ServiceDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fd := range r.files {
		if sd := fd.FindService(name); sd != nil {
			return sd, nil
		}
		for _, sd := range fd.GetServices() {
			if sd.GetFullyQualifiedName() == name || sd.GetName() == name {
				return sd, nil
			}
		}
	}
	return nil, fmt.Errorf("service %q not found (did you load the proto?)", name)
}

func splitMethodPath(path string) (service, method string, ok bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 || i == len(path)-1 {
				return "", "", false
			}
			return path[:i], path[i+1:], true
		}
	}
	return "", "", false
}
