package logger

import "go.uber.org/zap"

// New builds the zap.Logger every service binary wires into its
// constructors. component is stamped on every line so logs from
// cooperating processes can be told apart once aggregated.
func New(component string) *zap.Logger {
	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log.Named(component)
}
