package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/elb-access-log-collector/constants"
	"github.com/turbot/elb-access-log-collector/schema"
	"github.com/turbot/elb-access-log-collector/table"
	"golang.org/x/time/rate"
)

const minimalConfig = `
account_id = "123456789012"
region     = "us-west-1"
s3_bucket  = "my-bucket"
`

func TestParseAndValidate_Defaults(t *testing.T) {
	c, err := ParseAndValidate([]byte(minimalConfig), "test.hcl")
	require.NoError(t, err)

	variant, err := c.GetVariant()
	require.NoError(t, err)
	assert.Equal(t, schema.VariantClassic, variant)
	assert.Equal(t, "", c.GetS3Prefix())
	assert.Equal(t, constants.DefaultTag, c.GetTag())
	assert.Equal(t, constants.DefaultTsFilePath, c.GetTsFilePath())
	assert.Equal(t, constants.DefaultHistFilePath, c.GetHistFilePath())
	assert.Equal(t, constants.DefaultHistoryLength, c.GetHistoryLength())
	assert.Equal(t, constants.DefaultSamplingInterval, c.GetSamplingInterval())
	assert.False(t, c.IsDebug())
	assert.Empty(t, c.Outputs)

	interval, err := c.GetInterval()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, interval)

	buffer, err := c.GetBuffer()
	require.NoError(t, err)
	assert.Equal(t, 600*time.Second, buffer)

	start, err := c.GetStartDatetime()
	require.NoError(t, err)
	assert.Nil(t, start)

	fileFilter, err := c.GetFileFilter()
	require.NoError(t, err)
	assert.Nil(t, fileFilter)

	d := c.GetRateLimiterDefinition()
	assert.Equal(t, rate.Limit(0), d.FillRate)
	assert.Equal(t, int64(0), d.MaxConcurrency)
}

func TestParseAndValidate_Full(t *testing.T) {
	src := `
elb_type          = "alb"
account_id        = "123456789012"
region            = "us-west-1"
s3_bucket         = "my-bucket"
s3_prefix         = "logs"
tag               = "alb.access"
tsfile_path       = "/tmp/elb.ts"
histfile_path     = "/tmp/elb.history"
interval          = "5m"
buffer_sec        = 900
start_datetime    = "2015-05-24 18:30:00 UTC"
history_length    = 10
sampling_interval = 3
debug             = true
file_filter       = "hoge"
filter            = { elb_status_code = "^5", request = "GET" }
filter_operator   = "or"
type_cast         = false
parse_request     = false
split_addr_port   = false
aws_key_id        = "AKIA"
aws_sec_key       = "secret"
endpoint_url      = "http://localhost:4566"
s3_force_path_style = true
max_error_retry_attempts = 3
min_error_retry_delay    = 50
max_requests_per_second  = 20
max_concurrent_requests  = 4
metrics_listen_address   = ":9100"

output "jsonl" {
  path = "-"
}

output "redis" {
  address = "localhost:6379"
  stream  = "elb"
  max_len = 1000
}
`
	c, err := ParseAndValidate([]byte(src), "test.hcl")
	require.NoError(t, err)

	variant, err := c.GetVariant()
	require.NoError(t, err)
	assert.Equal(t, schema.VariantApplication, variant)
	assert.Equal(t, "logs", c.GetS3Prefix())
	assert.Equal(t, "alb.access", c.GetTag())
	assert.Equal(t, 10, c.GetHistoryLength())
	assert.Equal(t, 3, c.GetSamplingInterval())
	assert.True(t, c.IsDebug())
	assert.Equal(t, ":9100", c.GetMetricsListenAddress())

	interval, err := c.GetInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, interval)

	buffer, err := c.GetBuffer()
	require.NoError(t, err)
	assert.Equal(t, 900*time.Second, buffer)

	start, err := c.GetStartDatetime()
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.True(t, start.Equal(time.Date(2015, 5, 24, 18, 30, 0, 0, time.UTC)))

	fileFilter, err := c.GetFileFilter()
	require.NoError(t, err)
	assert.True(t, fileFilter.MatchString("x_hoge_y.log"))

	filter, err := c.GetRecordFilter()
	require.NoError(t, err)
	assert.True(t, filter.Match(table.Record{"elb_status_code": int64(200), "request": "GET / HTTP/1.1"}))
	assert.False(t, filter.Match(table.Record{"elb_status_code": int64(200), "request": "POST / HTTP/1.1"}))

	conn := c.GetAwsConnection()
	assert.Equal(t, "us-west-1", conn.Region)
	assert.Equal(t, "AKIA", *conn.AccessKey)
	assert.Equal(t, "secret", *conn.SecretKey)
	assert.True(t, conn.S3ForcePathStyle)
	assert.True(t, conn.Debug)
	assert.Equal(t, 3, *conn.MaxErrorRetryAttempts)
	assert.Equal(t, "http://localhost:4566", conn.Endpoint())

	d := c.GetRateLimiterDefinition()
	assert.Equal(t, rate.Limit(20), d.FillRate)
	assert.Equal(t, 20, d.BucketSize)
	assert.Equal(t, int64(4), d.MaxConcurrency)

	require.Len(t, c.Outputs, 2)
	assert.Equal(t, OutputTypeJSONL, c.Outputs[0].Type)
	assert.Equal(t, "-", *c.Outputs[0].Path)
	assert.Equal(t, OutputTypeRedis, c.Outputs[1].Type)
	assert.Equal(t, "localhost:6379", *c.Outputs[1].Address)
	assert.Equal(t, int64(1000), *c.Outputs[1].MaxLen)
	assert.Len(t, c.GetRecordBuilderOptions(), 3)
}

func TestParseAndValidate_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantProblems []string
	}{
		{
			name: "unknown elb type",
			src:  minimalConfig + `elb_type = "nlb"`,
			wantProblems: []string{
				`invalid elb_type "nlb", must be "clb" or "alb"`,
			},
		},
		{
			name:         "missing required attribute values",
			src:          `account_id = ""` + "\n" + `region = ""` + "\n" + `s3_bucket = ""`,
			wantProblems: []string{"account_id is required", "region is required", "s3_bucket is required"},
		},
		{
			name:         "bad sampling interval",
			src:          minimalConfig + `sampling_interval = 0`,
			wantProblems: []string{"sampling_interval must be at least 1"},
		},
		{
			name:         "bad filter operator",
			src:          minimalConfig + `filter_operator = "xor"`,
			wantProblems: []string{`invalid filter_operator "xor", must be "and" or "or"`},
		},
		{
			name:         "bad duration",
			src:          minimalConfig + `interval = "soon"`,
			wantProblems: []string{`interval: invalid duration "soon"`},
		},
		{
			name:         "zero interval",
			src:          minimalConfig + `interval = "0"`,
			wantProblems: []string{"interval must be positive"},
		},
		{
			name:         "redis output without address",
			src:          minimalConfig + `output "redis" {}`,
			wantProblems: []string{`output "redis": address is required`},
		},
		{
			name:         "unsupported output",
			src:          minimalConfig + `output "kafka" {}`,
			wantProblems: []string{`unsupported output type "kafka"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidate([]byte(tt.src), "test.hcl")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			for _, p := range tt.wantProblems {
				assert.Contains(t, verr.Problems, p)
			}
		})
	}
}

func TestParseAndValidate_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `account_id = `},
		{name: "missing required attribute", src: `region = "us-west-1"`},
		{name: "unknown attribute", src: minimalConfig + `bucket = "x"`},
		{name: "wrong type", src: minimalConfig + `history_length = "many"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidate([]byte(tt.src), "test.hcl")

			require.Error(t, err)
			// decode failures are reported before validation runs
			_, isValidation := err.(*ValidationError)
			assert.False(t, isValidation)
		})
	}
}

func TestConfig_GetStartDatetime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", value: "2015-05-24T18:30:00Z", want: time.Date(2015, 5, 24, 18, 30, 0, 0, time.UTC)},
		{name: "date only", value: "2015-05-24", want: time.Date(2015, 5, 24, 0, 0, 0, 0, time.UTC)},
		{name: "zoneless", value: "2015-05-24 18:30:00", want: time.Date(2015, 5, 24, 18, 30, 0, 0, time.UTC)},
		{name: "unparseable", value: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseAndValidate([]byte(minimalConfig+`start_datetime = "`+tt.value+`"`), "test.hcl")
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			got, err := c.GetStartDatetime()
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s got %s", tt.want, got)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elb.hcl")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", c.S3Bucket)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "300", want: 300 * time.Second},
		{value: "0", want: 0},
		{value: "5m", want: 5 * time.Minute},
		{value: "1h30m", want: 90 * time.Minute},
		{value: "-1", wantErr: true},
		{value: "-5m", wantErr: true},
		{value: "five", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseDuration(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
