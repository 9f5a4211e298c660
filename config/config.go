package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/turbot/elb-access-log-collector/artifact_source"
	"github.com/turbot/elb-access-log-collector/collection_state"
	"github.com/turbot/elb-access-log-collector/constants"
	"github.com/turbot/elb-access-log-collector/rate_limiter"
	"github.com/turbot/elb-access-log-collector/schema"
	"github.com/turbot/elb-access-log-collector/table"
	"golang.org/x/time/rate"
)

const (
	OutputTypeJSONL = "jsonl"
	OutputTypeRedis = "redis"
)

// Config is the collector configuration, decoded from HCL
type Config struct {
	ElbType   *string `hcl:"elb_type,optional"`
	AccountID string  `hcl:"account_id"`
	Region    string  `hcl:"region"`
	S3Bucket  string  `hcl:"s3_bucket"`
	S3Prefix  *string `hcl:"s3_prefix,optional"`
	Tag       *string `hcl:"tag,optional"`

	TsFilePath   *string `hcl:"tsfile_path,optional"`
	HistFilePath *string `hcl:"histfile_path,optional"`
	// durations are integer seconds or Go duration strings
	Interval         *string `hcl:"interval,optional"`
	StartDatetime    *string `hcl:"start_datetime,optional"`
	BufferSec        *string `hcl:"buffer_sec,optional"`
	HistoryLength    *int    `hcl:"history_length,optional"`
	SamplingInterval *int    `hcl:"sampling_interval,optional"`
	Debug            *bool   `hcl:"debug,optional"`

	FileFilter     *string           `hcl:"file_filter,optional"`
	Filter         map[string]string `hcl:"filter,optional"`
	FilterOperator *string           `hcl:"filter_operator,optional"`
	TypeCast       *bool             `hcl:"type_cast,optional"`
	ParseRequest   *bool             `hcl:"parse_request,optional"`
	SplitAddrPort  *bool             `hcl:"split_addr_port,optional"`

	AwsKeyID              *string `hcl:"aws_key_id,optional"`
	AwsSecKey             *string `hcl:"aws_sec_key,optional"`
	Profile               *string `hcl:"profile,optional"`
	CredentialsPath       *string `hcl:"credentials_path,optional"`
	HttpProxy             *string `hcl:"http_proxy,optional"`
	EndpointUrl           *string `hcl:"endpoint_url,optional"`
	S3ForcePathStyle      *bool   `hcl:"s3_force_path_style,optional"`
	MaxErrorRetryAttempts *int    `hcl:"max_error_retry_attempts,optional"`
	MinErrorRetryDelay    *int    `hcl:"min_error_retry_delay,optional"`

	MaxRequestsPerSecond  *float64 `hcl:"max_requests_per_second,optional"`
	MaxConcurrentRequests *int64   `hcl:"max_concurrent_requests,optional"`
	MetricsListenAddress  *string  `hcl:"metrics_listen_address,optional"`

	Outputs []OutputConfig `hcl:"output,block"`
}

// OutputConfig is an output block, labelled with the output type
type OutputConfig struct {
	Type string `hcl:"type,label"`

	// jsonl
	Path *string `hcl:"path,optional"`

	// redis
	Address *string `hcl:"address,optional"`
	Stream  *string `hcl:"stream,optional"`
	MaxLen  *int64  `hcl:"max_len,optional"`
}

func (c *Config) Validate() error {
	verr := &ValidationError{}

	if _, err := schema.VariantFromElbType(c.GetElbType()); err != nil {
		verr.add("%s", err)
	}
	if c.AccountID == "" {
		verr.add("account_id is required")
	}
	if c.Region == "" {
		verr.add("region is required")
	}
	if c.S3Bucket == "" {
		verr.add("s3_bucket is required")
	}
	if interval, err := c.GetInterval(); err != nil {
		verr.add("interval: %s", err)
	} else if interval <= 0 {
		verr.add("interval must be positive")
	}
	if _, err := c.GetBuffer(); err != nil {
		verr.add("buffer_sec: %s", err)
	}
	if _, err := c.GetStartDatetime(); err != nil {
		verr.add("start_datetime: %s", err)
	}
	if c.HistoryLength != nil && *c.HistoryLength < 0 {
		verr.add("history_length must not be negative")
	}
	if c.SamplingInterval != nil && *c.SamplingInterval < 1 {
		verr.add("sampling_interval must be at least 1")
	}
	if _, err := c.GetFileFilter(); err != nil {
		verr.add("file_filter: %s", err)
	}
	if _, err := c.GetRecordFilter(); err != nil {
		verr.add("%s", err)
	}
	if err := c.GetAwsConnection().Validate(); err != nil {
		verr.add("%s", err)
	}
	if err := c.GetRateLimiterDefinition().Validate(); err != nil {
		verr.add("%s", err)
	}
	for _, o := range c.Outputs {
		switch o.Type {
		case OutputTypeJSONL:
		case OutputTypeRedis:
			if o.Address == nil || *o.Address == "" {
				verr.add("output %q: address is required", o.Type)
			}
		default:
			verr.add("unsupported output type %q", o.Type)
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func (c *Config) GetElbType() string {
	return stringOrDefault(c.ElbType, constants.ElbTypeClassic)
}

func (c *Config) GetVariant() (schema.Variant, error) {
	return schema.VariantFromElbType(c.GetElbType())
}

func (c *Config) GetS3Prefix() string {
	return stringOrDefault(c.S3Prefix, "")
}

func (c *Config) GetTag() string {
	return stringOrDefault(c.Tag, constants.DefaultTag)
}

func (c *Config) GetTsFilePath() string {
	return stringOrDefault(c.TsFilePath, constants.DefaultTsFilePath)
}

func (c *Config) GetHistFilePath() string {
	return stringOrDefault(c.HistFilePath, constants.DefaultHistFilePath)
}

func (c *Config) GetInterval() (time.Duration, error) {
	return durationOrDefault(c.Interval, constants.DefaultInterval)
}

func (c *Config) GetBuffer() (time.Duration, error) {
	return durationOrDefault(c.BufferSec, constants.DefaultBufferSec)
}

// GetStartDatetime returns nil when start_datetime is not set
func (c *Config) GetStartDatetime() (*time.Time, error) {
	if c.StartDatetime == nil || *c.StartDatetime == "" {
		return nil, nil
	}
	t, err := collection_state.ParseTime(*c.StartDatetime)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Config) GetHistoryLength() int {
	if c.HistoryLength == nil {
		return constants.DefaultHistoryLength
	}
	return *c.HistoryLength
}

func (c *Config) GetSamplingInterval() int {
	if c.SamplingInterval == nil {
		return constants.DefaultSamplingInterval
	}
	return *c.SamplingInterval
}

func (c *Config) IsDebug() bool {
	return c.Debug != nil && *c.Debug
}

// GetFileFilter returns nil when file_filter is not set
func (c *Config) GetFileFilter() (*regexp.Regexp, error) {
	if c.FileFilter == nil || *c.FileFilter == "" {
		return nil, nil
	}
	return regexp.Compile(*c.FileFilter)
}

func (c *Config) GetRecordFilter() (*table.RecordFilter, error) {
	return table.NewRecordFilter(c.Filter, stringOrDefault(c.FilterOperator, constants.DefaultFilterOperator))
}

func (c *Config) GetRecordBuilderOptions() []table.RecordBuilderOption {
	return []table.RecordBuilderOption{
		table.WithTypeCast(boolOrDefault(c.TypeCast, true)),
		table.WithParseRequest(boolOrDefault(c.ParseRequest, true)),
		table.WithSplitAddrPort(boolOrDefault(c.SplitAddrPort, true)),
	}
}

func (c *Config) GetAwsConnection() *artifact_source.AwsConnection {
	return &artifact_source.AwsConnection{
		Region:                c.Region,
		Profile:               c.Profile,
		CredentialsPath:       c.CredentialsPath,
		AccessKey:             c.AwsKeyID,
		SecretKey:             c.AwsSecKey,
		HttpProxy:             c.HttpProxy,
		MaxErrorRetryAttempts: c.MaxErrorRetryAttempts,
		MinErrorRetryDelay:    c.MinErrorRetryDelay,
		EndpointUrl:           c.EndpointUrl,
		S3ForcePathStyle:      boolOrDefault(c.S3ForcePathStyle, false),
		Debug:                 c.IsDebug(),
	}
}

// GetRateLimiterDefinition returns the S3 API limits; unset values disable the limit
func (c *Config) GetRateLimiterDefinition() *rate_limiter.Definition {
	d := &rate_limiter.Definition{Name: "s3"}
	if c.MaxRequestsPerSecond != nil {
		d.FillRate = rate.Limit(*c.MaxRequestsPerSecond)
		d.BucketSize = max(1, int(*c.MaxRequestsPerSecond))
	}
	if c.MaxConcurrentRequests != nil {
		d.MaxConcurrency = *c.MaxConcurrentRequests
	}
	return d
}

func (c *Config) GetMetricsListenAddress() string {
	return stringOrDefault(c.MetricsListenAddress, "")
}

func stringOrDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func durationOrDefault(v *string, def time.Duration) (time.Duration, error) {
	if v == nil || *v == "" {
		return def, nil
	}
	return ParseDuration(*v)
}

// ParseDuration accepts integer seconds ("300") or a Go duration string ("5m")
func ParseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("duration %q must not be negative", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", value)
	}
	return d, nil
}
