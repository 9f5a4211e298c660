package artifact_source

import (
	"fmt"
	"os"

	"github.com/aws/smithy-go/logging"
	"github.com/hashicorp/go-hclog"
)

// awsSdkLogger routes AWS SDK client logs through an hclog logger
type awsSdkLogger struct {
	logger hclog.Logger
}

func newAwsSdkLogger() *awsSdkLogger {
	return &awsSdkLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:       "aws-sdk",
			Level:      hclog.Debug,
			Output:     os.Stderr,
			JSONFormat: true,
		}),
	}
}

// Logf implements logging.Logger
func (l *awsSdkLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	switch classification {
	case logging.Warn:
		l.logger.Warn(msg)
	default:
		l.logger.Debug(msg)
	}
}
