//go:build js

package pipeline

import "fmt"

var errParquetUnsupported = fmt.Errorf("parquet output is not supported in js builds; use csv")

func writeSeriesParquet(string, []SeriesSample) error {
	return errParquetUnsupported
}

func marshalSeriesParquet([]SeriesSample) ([]byte, error) {
	return nil, errParquetUnsupported
}
