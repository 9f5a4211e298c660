package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/turbot/elb-access-log-collector/artifact_loader"
	"github.com/turbot/elb-access-log-collector/artifact_source"
	"github.com/turbot/elb-access-log-collector/collection_state"
	"github.com/turbot/elb-access-log-collector/emitter"
	"github.com/turbot/elb-access-log-collector/mappers"
	"github.com/turbot/elb-access-log-collector/metrics"
	"github.com/turbot/elb-access-log-collector/schema"
	"github.com/turbot/elb-access-log-collector/table"
)

// CollectorConfig holds the settings of a [Collector]
type CollectorConfig struct {
	AccountID string
	Region    string
	S3Prefix  string
	Tag       string
	Variant   schema.Variant
	// objects with a key timestamp at or before watermark-Buffer are ignored
	Buffer           time.Duration
	SamplingInterval int
	BuilderOptions   []table.RecordBuilderOption
	// optional
	RecordFilter *table.RecordFilter
	FileFilter   *regexp.Regexp
}

// Collector discovers new access log objects and emits their records
type Collector struct {
	config    CollectorConfig
	source    artifact_source.ArtifactSource
	state     *collection_state.ElbCollectionState
	emitter   emitter.Emitter
	metrics   *metrics.CollectorMetrics
	keyParser *artifact_source.ObjectKeyParser
	mapper    *mappers.AccessLogMapper
	builder   *table.RecordBuilder
	sampler   *table.Sampler
}

// NewCollector builds a collector. m may be nil.
func NewCollector(config CollectorConfig, source artifact_source.ArtifactSource, state *collection_state.ElbCollectionState, e emitter.Emitter, m *metrics.CollectorMetrics) (*Collector, error) {
	if source == nil {
		return nil, errors.New("collector requires a source")
	}
	if state == nil {
		return nil, errors.New("collector requires a collection state")
	}
	if e == nil {
		return nil, errors.New("collector requires an emitter")
	}

	keyParser, err := artifact_source.NewObjectKeyParser()
	if err != nil {
		return nil, err
	}

	rowSchema := config.Variant.Schema()
	if err := rowSchema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s schema: %w", config.Variant, err)
	}
	return &Collector{
		config:    config,
		source:    source,
		state:     state,
		emitter:   e,
		metrics:   m,
		keyParser: keyParser,
		mapper:    mappers.NewAccessLogMapper(rowSchema),
		builder:   table.NewRecordBuilder(rowSchema, config.BuilderOptions...),
		sampler:   table.NewSampler(config.SamplingInterval),
	}, nil
}

// RunOneCycle collects every new object under the date prefixes around watermark and returns
// the new watermark: the latest key timestamp of the objects collected, or watermark if none were.
// If a prefix cannot be listed the watermark is returned unchanged with a *PartialListError.
// A cancelled cycle returns the context error.
func (c *Collector) RunOneCycle(ctx context.Context, watermark time.Time) (time.Time, error) {
	newWatermark := watermark
	threshold := watermark.Add(-c.config.Buffer)

	var failedPrefixes []string
	var listErrors []error

	for _, prefix := range artifact_source.DatePrefixes(c.config.S3Prefix, c.config.AccountID, c.config.Region, watermark) {
		if err := ctx.Err(); err != nil {
			return watermark, err
		}
		slog.Debug("Listing objects", "prefix", prefix)

		err := c.source.ListObjects(ctx, prefix, func(key string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.metrics.Listed()

			timestamp, collected, err := c.collectObject(ctx, key, threshold)
			if err != nil {
				return err
			}
			if collected && timestamp.After(newWatermark) {
				newWatermark = timestamp
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return watermark, ctx.Err()
			}
			slog.Error("Failed to list objects", "prefix", prefix, "error", err)
			c.metrics.ListError()
			failedPrefixes = append(failedPrefixes, prefix)
			listErrors = append(listErrors, err)
		}
	}

	if len(failedPrefixes) > 0 {
		return watermark, &PartialListError{Prefixes: failedPrefixes, Err: errors.Join(listErrors...)}
	}
	return newWatermark, nil
}

// collectObject returns the key timestamp and true if the object was collected.
// Only context errors are returned; all other failures are logged and the object is left for the next cycle.
func (c *Collector) collectObject(ctx context.Context, key string, threshold time.Time) (time.Time, bool, error) {
	objectKey, err := c.keyParser.Parse(key)
	if err != nil {
		slog.Debug("Skipping object", "key", key, "error", err)
		c.metrics.Object(metrics.ObjectSkipped)
		return time.Time{}, false, nil
	}

	if !artifact_source.IsLogSuffix(objectKey.Suffix) || !objectKey.Timestamp.After(threshold) {
		c.metrics.Object(metrics.ObjectSkipped)
		return time.Time{}, false, nil
	}

	if c.config.FileFilter != nil && !c.config.FileFilter.MatchString(key) {
		slog.Debug("Skipping object excluded by file_filter", "key", key)
		c.metrics.Object(metrics.ObjectSkipped)
		return time.Time{}, false, nil
	}

	if !c.state.ShouldCollect(key) {
		c.metrics.Object(metrics.ObjectDuplicate)
		return time.Time{}, false, nil
	}

	data, err := c.source.GetObject(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return time.Time{}, false, ctx.Err()
		}
		slog.Warn("Failed to download object", "key", key, "error", err)
		c.metrics.Object(metrics.ObjectFailed)
		return time.Time{}, false, nil
	}

	events, err := c.buildEvents(key, data)
	if err != nil {
		var decodeErr *artifact_loader.DecodeError
		if errors.As(err, &decodeErr) {
			slog.Warn(decodeErr.Error(), "key", key)
		} else {
			slog.Warn("Failed to read object", "key", key, "error", err)
		}
		c.metrics.Object(metrics.ObjectFailed)
		return time.Time{}, false, nil
	}

	if err := c.emitEvents(ctx, key, events); err != nil {
		if ctx.Err() != nil {
			return time.Time{}, false, ctx.Err()
		}
		c.metrics.Object(metrics.ObjectFailed)
		var emitErr *EmitError
		if !errors.As(err, &emitErr) || !emitErr.Partial() {
			slog.Warn("Failed to emit records, object will be retried", "key", key, "error", err)
			return time.Time{}, false, nil
		}
		// records already reached an output so the object is not collected again
		slog.Error("Failed to emit all records of object, remaining records dropped", "key", key, "error", err)
	} else {
		c.metrics.Object(metrics.ObjectCollected)
	}

	c.state.OnCollected(key)
	slog.Debug("Collected object", "key", key, "timestamp", objectKey.Timestamp, "records", len(events))
	return objectKey.Timestamp, true, nil
}

// buildEvents decodes the whole object and builds an event for every sampled, parseable line.
// Nothing is emitted here, so an object which fails part way through yields no events.
func (c *Collector) buildEvents(key string, data []byte) ([]emitter.Event, error) {
	lines, err := artifact_loader.Decode(key, data)
	if err != nil {
		return nil, err
	}

	var events []emitter.Event
	for index := 0; lines.Scan(); index++ {
		if !c.sampler.Keep(index) {
			c.metrics.Line(metrics.LineSampledOut)
			continue
		}
		if event, ok := c.buildEvent(lines.Text()); ok {
			events = append(events, *event)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if skipped := lines.Skipped(); skipped > 0 {
		slog.Warn("Skipped lines exceeding the maximum line length", "key", key, "count", skipped)
		for i := 0; i < skipped; i++ {
			c.metrics.Line(metrics.LineTooLong)
		}
	}
	return events, nil
}

// emitEvents sends the events in order, stopping at the first failure
func (c *Collector) emitEvents(ctx context.Context, key string, events []emitter.Event) error {
	for i, event := range events {
		if err := c.emitter.Emit(ctx, event); err != nil {
			return &EmitError{Key: key, Delivered: i, Total: len(events), Err: err}
		}
		c.metrics.Line(metrics.LineEmitted)
	}
	return nil
}

// buildEvent parses a line into an event; false means the line was dropped
func (c *Collector) buildEvent(line string) (*emitter.Event, bool) {
	fields, err := c.mapper.Parse(line)
	if err != nil {
		slog.Warn(err.Error())
		c.metrics.Line(metrics.LineParseError)
		return nil, false
	}
	if fields == nil {
		// empty line
		return nil, false
	}

	record, err := c.builder.Build(fields)
	if err != nil {
		slog.Warn(err.Error())
	}

	eventTime, err := table.EventTime(record)
	if err != nil {
		slog.Warn(err.Error())
		slog.Warn("A record that has bad timestamp is not emitted.")
		c.metrics.Line(metrics.LineBadTime)
		return nil, false
	}

	if !c.config.RecordFilter.Match(record) {
		c.metrics.Line(metrics.LineFiltered)
		return nil, false
	}

	return &emitter.Event{
		Tag:    c.config.Tag,
		Time:   eventTime.Unix(),
		Record: record,
	}, true
}
