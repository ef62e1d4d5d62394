package aws

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsRecorder counts admin actions. Implementations must not fail the caller.
type MetricsRecorder interface {
	Count(ctx context.Context, name string, dims map[string]string)
}

// NopMetrics discards every data point.
type NopMetrics struct{}

func (NopMetrics) Count(context.Context, string, map[string]string) {}

// Metrics publishes counters to CloudWatch under a single namespace.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
	nowFunc   func() time.Time
}

// NewMetrics returns a CloudWatch backed recorder, or NopMetrics when namespace is empty.
func NewMetrics(cw CloudWatchAPI, namespace string) MetricsRecorder {
	if cw == nil || namespace == "" {
		return NopMetrics{}
	}
	return &Metrics{CW: cw, Namespace: namespace, nowFunc: time.Now}
}

// Count puts a single Count datapoint. Failures are logged and swallowed.
func (m *Metrics) Count(ctx context.Context, name string, dims map[string]string) {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dimensions := make([]cwtypes.Dimension, 0, len(keys))
	for _, k := range keys {
		dimensions = append(dimensions, cwtypes.Dimension{
			Name:  String(k),
			Value: String(dims[k]),
		})
	}

	one := 1.0
	ts := m.nowFunc()
	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: String(name),
				Dimensions: dimensions,
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &one,
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put %s failed: %v", name, err)
	}
}
