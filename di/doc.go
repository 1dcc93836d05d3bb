// Package di provides the dependency injection container used by svcapp.
//
// Components are registered under string keys in one of three modes:
// lazy (constructed on first Resolve and cached), eager (constructed when
// the container is bootstrapped) or singleton (a pre-built instance).
// Installers group related registrations.
//
// # Registration
//
//	c := di.NewContainer()
//	_ = c.Install(di.InstallerFunc(func(c di.Container) error {
//	    return c.Register("clock", func() Clock { return systemClock{} })
//	}))
//
// # Resolution
//
//	clock := di.MustResolve[Clock](c, "clock")
//
// Close releases every constructed instance that implements Close() error.
package di
