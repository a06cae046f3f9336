package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type trafficStat struct {
	messages int64
	bytes    int64
}

var (
	errorsVenue    int64
	errorsEngine   int64
	warnsVenue     int64
	warnsEngine    int64
	scansCompleted int64
	tickerReads    int64
	depthReads     int64
	enrichCalls    int64
	enrichFailures int64
	reportWrites   int64
	traffic        sync.Map // map[string]*trafficStat keyed by venue or sink name
)

func recordWarn(component string) {
	if strings.Contains(component, "engine") {
		atomic.AddInt64(&warnsEngine, 1)
	} else {
		atomic.AddInt64(&warnsVenue, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "engine") {
		atomic.AddInt64(&errorsEngine, 1)
	} else {
		atomic.AddInt64(&errorsVenue, 1)
	}
}

// IncrementScanCompleted records one finished scan.
func IncrementScanCompleted() {
	atomic.AddInt64(&scansCompleted, 1)
}

// IncrementTickerRead records a fetched ticker payload of the given size for
// the named venue.
func IncrementTickerRead(venue string, size int) {
	atomic.AddInt64(&tickerReads, 1)
	recordTraffic(venue, size)
}

// IncrementDepthRead records a fetched order-book payload for the named venue.
func IncrementDepthRead(venue string, size int) {
	atomic.AddInt64(&depthReads, 1)
	recordTraffic(venue, size)
}

// IncrementEnrichCall records one coin-info lookup; failed lookups are
// counted separately so degraded enrichment shows up in the report.
func IncrementEnrichCall(venue string, ok bool) {
	atomic.AddInt64(&enrichCalls, 1)
	if !ok {
		atomic.AddInt64(&enrichFailures, 1)
	}
	recordTraffic(venue, 0)
}

// IncrementReportWrite records one persisted scan report of the given size.
func IncrementReportWrite(size int64) {
	atomic.AddInt64(&reportWrites, 1)
	recordTraffic("report_writer", int(size))
}

func recordTraffic(name string, size int) {
	v, _ := traffic.LoadOrStore(name, &trafficStat{})
	ts := v.(*trafficStat)
	atomic.AddInt64(&ts.messages, 1)
	atomic.AddInt64(&ts.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and scan statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)

	trafficData := map[string]map[string]int64{}
	traffic.Range(func(k, v any) bool {
		name := k.(string)
		ts := v.(*trafficStat)
		trafficData[name] = map[string]int64{
			"messages": atomic.LoadInt64(&ts.messages),
			"bytes":    atomic.LoadInt64(&ts.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_venue":    atomic.LoadInt64(&errorsVenue),
		"errors_engine":   atomic.LoadInt64(&errorsEngine),
		"warns_venue":     atomic.LoadInt64(&warnsVenue),
		"warns_engine":    atomic.LoadInt64(&warnsEngine),
		"scans_completed": atomic.LoadInt64(&scansCompleted),
		"ticker_reads":    atomic.LoadInt64(&tickerReads),
		"depth_reads":     atomic.LoadInt64(&depthReads),
		"enrich_calls":    atomic.LoadInt64(&enrichCalls),
		"enrich_failures": atomic.LoadInt64(&enrichFailures),
		"report_writes":   atomic.LoadInt64(&reportWrites),
		"goroutines":      runtime.NumGoroutine(),
		"cpu_percent":     cpuPct,
		"memory_mb":       int64(memStats.Used) / 1024 / 1024,
		"disk_mb":         int64(diskStats.Used) / 1024 / 1024,
		"traffic":         trafficData,
		"net_bytes_sent":  int64(bytesSent),
		"net_bytes_recv":  int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsVenue"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_venue"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsEngine"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_engine"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ScansCompleted"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["scans_completed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("TickerReads"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["ticker_reads"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("DepthReads"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["depth_reads"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("EnrichCalls"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["enrich_calls"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("EnrichFailures"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["enrich_failures"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ReportWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["report_writes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range trafficData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("SourceMessages"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Source"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["messages"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("SourceBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Source"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
