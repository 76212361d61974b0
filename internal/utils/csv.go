package utils

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"aizybot/internal/domain"
)

// WriteCandles writes candles as CSV to w with a header row.
func WriteCandles(w io.Writer, candles []*domain.Candle) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"})

	for _, c := range candles {
		writer.Write([]string{
			c.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// WriteCandlesToCSV writes candles to the named file, creating it if needed.
func WriteCandlesToCSV(candles []*domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCandles(file, candles)
}
