package artifact_source

import (
	"fmt"
	"time"

	"github.com/elastic/go-grok"
	"github.com/turbot/elb-access-log-collector/helpers"
)

// ObjectKeyLayout is the grok layout of an ELB access log object key:
// {account_id}_elasticloadbalancing_{region}_{name}_{timestamp}_{ip}_{suffix}
// It is applied to the whole key, including the path prefix.
const ObjectKeyLayout = `^%{DATA:account_id}_%{DATA:service}_%{DATA:region}_%{DATA:name}_%{DATA:timestamp}_%{DATA:ip}_%{GREEDYDATA:suffix}$`

const (
	objectKeyFieldTimestamp = "timestamp"
	objectKeyFieldSuffix    = "suffix"
)

// timestamp formats found in object keys
var objectKeyTimeLayouts = []string{
	time.RFC3339Nano,
	"20060102T1504Z",
	"20060102T150405Z",
}

type ObjectKey struct {
	Key       string
	Region    string
	Name      string
	IP        string
	Suffix    string
	Timestamp time.Time
}

// KeyParseError is returned for object keys which do not follow the ELB naming scheme
type KeyParseError struct {
	Key    string
	Reason string
}

func (e *KeyParseError) Error() string {
	return fmt.Sprintf("unrecognised object key %s: %s", e.Key, e.Reason)
}

// ObjectKeyParser extracts the metadata encoded in object keys
// NOTE: not safe for concurrent use
type ObjectKeyParser struct {
	g *grok.Grok
}

func NewObjectKeyParser() (*ObjectKeyParser, error) {
	if err := helpers.RequireGrokFields(ObjectKeyLayout, objectKeyFieldTimestamp, objectKeyFieldSuffix); err != nil {
		return nil, err
	}
	g := grok.New()
	if err := g.Compile(ObjectKeyLayout, true); err != nil {
		return nil, fmt.Errorf("failed to compile object key layout: %w", err)
	}
	return &ObjectKeyParser{g: g}, nil
}

func (p *ObjectKeyParser) Parse(key string) (*ObjectKey, error) {
	matched, metadata, err := getPathMetadata(p.g, key)
	if err != nil {
		return nil, &KeyParseError{Key: key, Reason: err.Error()}
	}
	if !matched {
		return nil, &KeyParseError{Key: key, Reason: "key does not match layout"}
	}

	rawTimestamp := string(metadata[objectKeyFieldTimestamp])
	timestamp, err := parseKeyTimestamp(rawTimestamp)
	if err != nil {
		return nil, &KeyParseError{Key: key, Reason: err.Error()}
	}

	return &ObjectKey{
		Key:       key,
		Region:    string(metadata["region"]),
		Name:      string(metadata["name"]),
		IP:        string(metadata["ip"]),
		Suffix:    string(metadata[objectKeyFieldSuffix]),
		Timestamp: timestamp,
	}, nil
}

// getPathMetadata extracts the layout fields from a key using a compiled grok
func getPathMetadata(g *grok.Grok, key string) (bool, map[string][]byte, error) {
	// first check if the key matches the layout
	if !g.MatchString(key) {
		return false, nil, nil
	}
	metadata, err := g.Parse([]byte(key))
	if err != nil {
		return false, nil, err
	}
	return true, metadata, nil
}

func parseKeyTimestamp(value string) (time.Time, error) {
	for _, layout := range objectKeyTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
