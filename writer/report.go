// Package writer persists scan results as parquet files, locally and/or to
// S3. One scan produces one file holding the full ranked opportunity table.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	appconfig "arbscan/config"
	"arbscan/engine"
	"arbscan/logger"
)

// opportunityRecord defines the parquet schema for one opportunity row. The
// column order mirrors the table handed to the presentation layer, prefixed
// with scan metadata so files are self-describing.
type opportunityRecord struct {
	ScanID    string `parquet:"name=scan_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ScannedAt int64  `parquet:"name=scanned_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	VenueA    string `parquet:"name=venue_a, type=BYTE_ARRAY, convertedtype=UTF8"`
	VenueB    string `parquet:"name=venue_b, type=BYTE_ARRAY, convertedtype=UTF8"`

	Symbol    string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	BidA      float64 `parquet:"name=bid_a, type=DOUBLE"`
	AskA      float64 `parquet:"name=ask_a, type=DOUBLE"`
	BidB      float64 `parquet:"name=bid_b, type=DOUBLE"`
	AskB      float64 `parquet:"name=ask_b, type=DOUBLE"`
	SpreadPct float64 `parquet:"name=spread_pct, type=DOUBLE"`
	BuyVenue  string  `parquet:"name=buy_venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	SellVenue string  `parquet:"name=sell_venue, type=BYTE_ARRAY, convertedtype=UTF8"`

	MeanBuyFillPrice  float64 `parquet:"name=mean_buy_fill_price, type=DOUBLE"`
	MeanSellFillPrice float64 `parquet:"name=mean_sell_fill_price, type=DOUBLE"`
	BuyFillVolume     float64 `parquet:"name=buy_fill_volume, type=DOUBLE"`
	SellFillVolume    float64 `parquet:"name=sell_fill_volume, type=DOUBLE"`

	DepositChainsBuyVenue   string `parquet:"name=deposit_chains_buy_venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	WithdrawChainsSellVenue string `parquet:"name=withdraw_chains_sell_venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	DepositChainsSellVenue  string `parquet:"name=deposit_chains_sell_venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	WithdrawChainsBuyVenue  string `parquet:"name=withdraw_chains_buy_venue, type=BYTE_ARRAY, convertedtype=UTF8"`

	PriceBasis string `parquet:"name=price_basis, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type memFileWriter struct{ buffer *bytes.Buffer }

func newMemFileWriter() *memFileWriter { return &memFileWriter{buffer: &bytes.Buffer{}} }

func (m *memFileWriter) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFileWriter) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFileWriter) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFileWriter) Read([]byte) (int, error)                  { return 0, nil }
func (m *memFileWriter) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFileWriter) Close() error                              { return nil }
func (m *memFileWriter) Bytes() []byte                             { return m.buffer.Bytes() }

// ReportWriter persists scan results according to the storage configuration.
type ReportWriter struct {
	cfg      appconfig.ReportsConfig
	s3Client *s3.Client
	log      *logger.Entry
}

// NewReportWriter builds a writer for the configured targets. The S3 client
// is only created when the S3 target is enabled.
func NewReportWriter(ctx context.Context, cfg appconfig.ReportsConfig) (*ReportWriter, error) {
	w := &ReportWriter{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("report_writer"),
	}
	if !cfg.S3.Enabled {
		return w, nil
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3.Region)}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	w.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.PathStyle
	})
	return w, nil
}

// Write persists one scan result to every configured target. Empty scans are
// skipped.
func (w *ReportWriter) Write(ctx context.Context, res *engine.Result) error {
	if len(res.Opportunities) == 0 {
		w.log.WithFields(logger.Fields{"scan_id": res.ScanID}).Debug("empty scan, nothing to persist")
		return nil
	}

	data, err := w.createParquet(res)
	if err != nil {
		return fmt.Errorf("encode scan %s: %w", res.ScanID, err)
	}

	name := objectKey(res)
	if w.cfg.Dir != "" {
		path := filepath.Join(w.cfg.Dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
		w.log.WithFields(logger.Fields{"path": path, "bytes": len(data)}).Info("scan report written")
	}

	if w.s3Client != nil {
		_, err := w.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(w.cfg.S3.Bucket),
			Key:    aws.String(name),
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return fmt.Errorf("upload report %s: %w", name, err)
		}
		w.log.WithFields(logger.Fields{"bucket": w.cfg.S3.Bucket, "key": name, "bytes": len(data)}).Info("scan report uploaded")
	}

	logger.LogDataFlowEntry(w.log, res.VenueA+"_"+res.VenueB, name, len(res.Opportunities), "opportunities")
	logger.IncrementReportWrite(int64(len(data)))
	return nil
}

func (w *ReportWriter) createParquet(res *engine.Result) ([]byte, error) {
	mw := newMemFileWriter()
	pw, err := pqwriter.NewParquetWriter(mw, new(opportunityRecord), 2)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = compressionCodec(w.cfg.Compression)

	scannedAt := res.StartedAt.UnixMilli()
	for _, op := range res.Opportunities {
		rec := opportunityRecord{
			ScanID:    res.ScanID,
			ScannedAt: scannedAt,
			VenueA:    res.VenueA,
			VenueB:    res.VenueB,

			Symbol:    op.Symbol,
			BidA:      op.BidA,
			AskA:      op.AskA,
			BidB:      op.BidB,
			AskB:      op.AskB,
			SpreadPct: op.SpreadPct,
			BuyVenue:  op.BuyVenue,
			SellVenue: op.SellVenue,

			MeanBuyFillPrice:  op.MeanBuyFillPrice,
			MeanSellFillPrice: op.MeanSellFillPrice,
			BuyFillVolume:     op.BuyFillVolume,
			SellFillVolume:    op.SellFillVolume,

			DepositChainsBuyVenue:   op.DepositChainsBuyVenue,
			WithdrawChainsSellVenue: op.WithdrawChainsSellVenue,
			DepositChainsSellVenue:  op.DepositChainsSellVenue,
			WithdrawChainsBuyVenue:  op.WithdrawChainsBuyVenue,

			PriceBasis: op.PriceBasis,
		}
		if err := pw.Write(rec); err != nil {
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return mw.Bytes(), nil
}

func compressionCodec(name string) parquet.CompressionCodec {
	switch strings.ToLower(name) {
	case "gzip":
		return parquet.CompressionCodec_GZIP
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED
	default:
		return parquet.CompressionCodec_SNAPPY
	}
}

// objectKey partitions reports by scan date so both the local tree and the
// S3 prefix stay browsable.
func objectKey(res *engine.Result) string {
	return fmt.Sprintf("scans/%s/%s_%s/%s.parquet",
		res.StartedAt.UTC().Format("2006/01/02"),
		res.VenueA, res.VenueB, res.ScanID)
}
