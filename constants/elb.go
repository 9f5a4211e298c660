package constants

import "time"

const (
	ElbTypeClassic     = "clb"
	ElbTypeApplication = "alb"
)

const (
	DefaultTag              = "elb.access_log"
	DefaultTsFilePath       = "/var/tmp/fluent-plugin-elb-access-log.ts"
	DefaultHistFilePath     = "/var/tmp/fluent-plugin-elb-access-log.history"
	DefaultInterval         = 300 * time.Second
	DefaultBufferSec        = 600 * time.Second
	DefaultHistoryLength    = 100
	DefaultSamplingInterval = 1
	DefaultFilterOperator   = FilterOperatorAnd
)

const (
	FilterOperatorAnd = "and"
	FilterOperatorOr  = "or"
)

// EnvLogLevel selects the slog level (debug, info, warn, error, off)
const EnvLogLevel = "ELB_ACCESS_LOG_LEVEL"
