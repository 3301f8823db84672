package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	decisions *csv.Writer
	orders    *csv.Writer
	df, of    *os.File
}

func NewCSV(decisionsPath, ordersPath string) (*CSVJournal, error) {
	df, err := os.Create(decisionsPath)
	if err != nil {
		return nil, err
	}
	of, err := os.Create(ordersPath)
	if err != nil {
		df.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	ow := csv.NewWriter(of)

	if err := dw.Write([]string{"id", "time", "symbol", "direction", "timeframe", "notional", "approved", "reason", "source"}); err != nil {
		return nil, err
	}
	if err := ow.Write([]string{"client_order_id", "time", "symbol", "direction", "notional", "venue", "ok", "trade_id", "detail"}); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{dw, ow, df, of}, nil
}

func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	err := j.decisions.Write([]string{
		d.ID,
		d.Time.Format(time.RFC3339),
		d.Symbol,
		d.Direction,
		d.Timeframe,
		f(d.Notional),
		strconv.FormatBool(d.Approved),
		d.Reason,
		d.Source,
	})
	if err != nil {
		return err
	}

	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) RecordOrder(o OrderRecord) error {
	err := j.orders.Write([]string{
		o.ClientOrderID,
		o.Time.Format(time.RFC3339),
		o.Symbol,
		o.Direction,
		f(o.Notional),
		o.Venue,
		strconv.FormatBool(o.OK),
		o.TradeID,
		o.Detail,
	})
	if err != nil {
		return err
	}

	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) Close() error {
	j.decisions.Flush()
	j.orders.Flush()
	if err := j.df.Close(); err != nil {
		j.of.Close()
		return err
	}
	return j.of.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
