//go:build !unix

package recorder

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return nil
}
