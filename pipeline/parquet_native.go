//go:build !js

package pipeline

import (
	"github.com/xitongsys/parquet-go-source/local"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type seriesParquetRow struct {
	Channel string  `parquet:"name=channel, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unit    string  `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	X       float64 `parquet:"name=x, type=DOUBLE"`
	Y       float64 `parquet:"name=y, type=DOUBLE"`
}

func writeSeriesParquet(path string, samples []SeriesSample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := encodeSeriesParquet(fw, samples); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalSeriesParquet(samples []SeriesSample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := encodeSeriesParquet(fw, samples); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func encodeSeriesParquet(fw source.ParquetFile, samples []SeriesSample) error {
	pw, err := writer.NewParquetWriter(fw, new(seriesParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := seriesParquetRow{Channel: s.Channel, Unit: s.Unit, X: s.X, Y: s.Y}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
