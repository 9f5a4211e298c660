package rate_limiter

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// Definition configures an APILimiter. A zero FillRate disables rate limiting,
// a zero MaxConcurrency disables the concurrency limit.
type Definition struct {
	Name string
	// requests per second and burst size
	FillRate   rate.Limit
	BucketSize int
	// the max number of in-flight requests
	MaxConcurrency int64
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s: Limit(/s): %v, Burst: %d, MaxConcurrency: %d", d.Name, d.FillRate, d.BucketSize, d.MaxConcurrency)
}

func (d *Definition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("rate limiter definition must specify a name"))
	}
	if d.FillRate < 0 {
		errs = append(errs, fmt.Errorf("rate limiter %s: fill rate must not be negative", d.Name))
	}
	if d.FillRate > 0 && d.BucketSize < 1 {
		errs = append(errs, fmt.Errorf("rate limiter %s: bucket size must be at least 1 when a fill rate is set", d.Name))
	}
	if d.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("rate limiter %s: max concurrency must not be negative", d.Name))
	}
	return errors.Join(errs...)
}
