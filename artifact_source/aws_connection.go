package artifact_source

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/dnscache"
	"golang.org/x/sync/semaphore"
)

// AwsConnection holds the settings used to build the S3 client
type AwsConnection struct {
	Region                string
	Profile               *string
	CredentialsPath       *string
	AccessKey             *string
	SecretKey             *string
	HttpProxy             *string
	MaxErrorRetryAttempts *int
	MinErrorRetryDelay    *int
	EndpointUrl           *string
	S3ForcePathStyle      bool
	// log AWS SDK requests, responses and retries
	Debug bool
}

func (c *AwsConnection) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("aws_key_id set without aws_sec_key")
	}

	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("aws_sec_key set without aws_key_id")
	}

	if c.MinErrorRetryDelay != nil && *c.MinErrorRetryDelay < 1 {
		return fmt.Errorf("min_error_retry_delay must be greater than or equal to 1")
	}

	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}

	if c.HttpProxy != nil {
		if _, err := url.Parse(*c.HttpProxy); err != nil {
			return fmt.Errorf("invalid http_proxy: %w", err)
		}
	}

	return nil
}

func (c *AwsConnection) GetClientConfiguration(ctx context.Context) (*aws.Config, error) {
	configOptions := []func(*config.LoadOptions) error{
		config.WithRegion(c.Region),
	}

	// static keys take precedence over a shared profile
	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(aws.ToString(c.AccessKey), aws.ToString(c.SecretKey), "")
		configOptions = append(configOptions, config.WithCredentialsProvider(provider))
	} else if c.Profile != nil {
		configOptions = append(configOptions, config.WithSharedConfigProfile(aws.ToString(c.Profile)))
		if c.CredentialsPath != nil {
			credentialsPath, err := homedir.Expand(aws.ToString(c.CredentialsPath))
			if err != nil {
				return nil, fmt.Errorf("failed to expand credentials_path: %w", err)
			}
			configOptions = append(configOptions, config.WithSharedCredentialsFiles([]string{credentialsPath}))
		}
	}

	httpClient, err := c.httpClient()
	if err != nil {
		return nil, err
	}
	configOptions = append(configOptions, config.WithHTTPClient(httpClient))

	if c.Debug {
		configOptions = append(configOptions,
			config.WithLogger(newAwsSdkLogger()),
			config.WithClientLogMode(aws.LogRetries|aws.LogRequest|aws.LogResponse),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	// retry handling
	maxRetries := getConfigOrEnvInt(c.MaxErrorRetryAttempts, "AWS_MAX_ATTEMPTS", 9)
	var minRetryDelay = 25 * time.Millisecond
	if c.MinErrorRetryDelay != nil {
		minRetryDelay = time.Duration(*c.MinErrorRetryDelay) * time.Millisecond
	}

	retryer := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = maxRetries
		o.MaxBackoff = 5 * time.Minute
		o.RateLimiter = NoOpRateLimit{}
		o.Backoff = NewExponentialJitterBackoff(minRetryDelay, maxRetries)
	})
	cfg.Retryer = func() aws.Retryer {
		// UnknownError is the code returned for a 408 from the aws go sdk
		return retry.AddWithErrorCodes(retryer, "UnknownError")
	}

	return &cfg, nil
}

// Endpoint returns the custom endpoint url, from config or AWS_ENDPOINT_URL
func (c *AwsConnection) Endpoint() string {
	if c.EndpointUrl != nil {
		return *c.EndpointUrl
	}
	return os.Getenv("AWS_ENDPOINT_URL")
}

func (c *AwsConnection) httpClient() (aws.HTTPClient, error) {
	client := sharedHTTPClient
	if c.HttpProxy != nil {
		proxyURL, err := url.Parse(*c.HttpProxy)
		if err != nil {
			return nil, fmt.Errorf("invalid http_proxy: %w", err)
		}
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.Proxy = http.ProxyURL(proxyURL)
		})
	}
	return client, nil
}

func getConfigOrEnvInt(configValue *int, env string, defaultValue int) int {
	if configValue != nil {
		return *configValue
	}
	return readEnvVarToInt(env, defaultValue)
}

// initializeHTTPClient builds an HTTP client with a DNS cache and a bound on
// parallel DNS lookups, otherwise keeping the AWS SDK defaults.
func initializeHTTPClient() *awshttp.BuildableClient {
	// max parallel DNS lookups
	dnsLookupMaxParallel := readEnvVarToInt("ELB_ACCESS_LOG_AWS_DNS_LOOKUP_MAX_PARALLEL", 25)

	// DNS cache refresh interval: 0 disables the refresh, -1 disables the cache
	dnsCacheRefreshIntervalSecs := readEnvVarToInt("ELB_ACCESS_LOG_AWS_DNS_CACHE_REFRESH_INTERVAL_SECS", 300)

	// max HTTPS connections per host, 0 removes the limit
	httpTransportMaxConnsPerHost := readEnvVarToInt("ELB_ACCESS_LOG_AWS_HTTP_TRANSPORT_MAX_CONNS_PER_HOST", 100)

	var resolver = &dnscache.Resolver{}
	if dnsCacheRefreshIntervalSecs > 0 {
		go func() {
			t := time.NewTicker(time.Duration(dnsCacheRefreshIntervalSecs) * time.Second)
			defer t.Stop()
			for range t.C {
				resolver.Refresh(true)
			}
		}()
	}

	client := awshttp.NewBuildableClient()

	if httpTransportMaxConnsPerHost > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = httpTransportMaxConnsPerHost
		})
	}

	if dnsCacheRefreshIntervalSecs >= 0 {
		sem := semaphore.NewWeighted(int64(dnsLookupMaxParallel))
		dialer := client.GetDialer()

		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}

				if err := sem.Acquire(ctx, 1); err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				sem.Release(1)
				if err != nil {
					return nil, err
				}

				// try each address until a connection succeeds
				for _, ip := range ips {
					conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						break
					}
				}
				return
			}
		})
	}

	return client
}

var sharedHTTPClient = initializeHTTPClient()

func readEnvVarToInt(name string, defaultVal int) int {
	val := defaultVal
	envValue := os.Getenv(name)
	if envValue != "" {
		i, err := strconv.Atoi(envValue)
		if err == nil {
			val = i
		}
	}
	return val
}

// NoOpRateLimit disables the SDK client side retry token bucket https://github.com/aws/aws-sdk-go-v2/issues/543
type NoOpRateLimit struct{}

func (NoOpRateLimit) AddTokens(uint) error { return nil }
func (NoOpRateLimit) GetToken(context.Context, uint) (func() error, error) {
	return noOpToken, nil
}
func noOpToken() error { return nil }

// ExponentialJitterBackoff provides backoff delays with jitter based on the
// number of attempts.
type ExponentialJitterBackoff struct {
	minDelay           time.Duration
	maxBackoffAttempts int
}

func NewExponentialJitterBackoff(minDelay time.Duration, maxAttempts int) *ExponentialJitterBackoff {
	return &ExponentialJitterBackoff{minDelay, maxAttempts}
}

// BackoffDelay returns the duration to wait before the next attempt should be made
func (j *ExponentialJitterBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	// jitter between [0.8, 1.2)
	var jitter = float64(rand.Intn(120-80)+80) / 100

	retryTime := time.Duration(float64(j.minDelay.Nanoseconds()) * math.Pow(3, float64(attempt)) * jitter)

	// cap at 5 minutes
	if retryTime > 5*time.Minute {
		retryTime = 5 * time.Minute
	}

	slog.Info("Retrying S3 request", "attempt", attempt, "retry_time", retryTime.String(), "error", err)

	return retryTime, nil
}
