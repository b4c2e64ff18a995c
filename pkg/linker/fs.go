package linker

import "os"

// FS is the narrow filesystem surface the linker mutates. Production code
// uses the OS implementation; tests inject failing fakes.
type FS interface {
	Remove(name string) error
	Symlink(oldname, newname string) error
	Link(oldname, newname string) error
}

type osFS struct{}

// NewOSFS returns the real-filesystem implementation
func NewOSFS() FS {
	return &osFS{}
}

func (o *osFS) Remove(name string) error {
	return os.Remove(name)
}

func (o *osFS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (o *osFS) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}
