package di

// KeyNames lists the container keys the orchestrator registers itself.
type KeyNames struct {
	// Program is the application unit started and stopped by the orchestrator.
	Program string
	// Config is the *config.ServiceConfig (or embedding struct) the app was built with.
	Config string
	// Logger is the orchestrator's *logger.Logger, available once bootstrap begins.
	Logger string
}

// Keys contains the well-known container keys.
var Keys = KeyNames{
	Program: "$program",
	Config:  "$config",
	Logger:  "$logger",
}
