package gpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by operations that are declared but not
	// implemented by this layer, such as switching render targets.
	ErrUnsupported = errors.New("gpu: unsupported operation")
	// ErrReleased is returned when a released resource or a closed Context is used.
	ErrReleased = errors.New("gpu: resource released")
	// ErrNoDevice is returned by NewContext when given a nil Device.
	ErrNoDevice = errors.New("gpu: nil device")
)

// ResourceAllocationError reports that the device refused to create an identity.
type ResourceAllocationError struct {
	Resource string
	Err      error
}

func (e *ResourceAllocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gpu: cannot allocate %s", e.Resource)
	}
	return fmt.Sprintf("gpu: cannot allocate %s: %v", e.Resource, e.Err)
}

func (e *ResourceAllocationError) Unwrap() error { return e.Err }

type ShaderCompileError struct {
	Stage Stage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gpu: %s shader compile error: %s", e.Stage, e.Log)
}

type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("gpu: program link error: %s", e.Log)
}

// UniformTypeMismatchError is returned when a value's variant does not match
// the declared type of the uniform it is bound to.
type UniformTypeMismatchError struct {
	Name     string
	Expected UniformType
	Got      UniformType
}

func (e *UniformTypeMismatchError) Error() string {
	return fmt.Sprintf("gpu: uniform %q declared %s, got %s value", e.Name, e.Expected, e.Got)
}

// UnknownUniformError is returned for a uniform name that is not declared on
// the program or that the device optimised away.
type UnknownUniformError struct {
	Name string
}

func (e *UnknownUniformError) Error() string {
	return fmt.Sprintf("gpu: unknown uniform %q", e.Name)
}

// BufferBoundsError reports a write or read that exceeds the available data.
type BufferBoundsError struct {
	Op   string
	Need int
	Have int
}

func (e *BufferBoundsError) Error() string {
	return fmt.Sprintf("gpu: %s out of bounds: need %d bytes, have %d", e.Op, e.Need, e.Have)
}

func allocErr(resource string, err error) error {
	return &ResourceAllocationError{Resource: resource, Err: err}
}
