package web

import "github.com/sweeney/plant-monitor/internal/store"

// HistoryJSON is the JSON representation of recent persisted rows.
type HistoryJSON struct {
	Count int         `json:"count"`
	Rows  []store.Row `json:"rows"`
}

func formatHistory(rows []store.Row) HistoryJSON {
	if rows == nil {
		rows = []store.Row{}
	}
	return HistoryJSON{Count: len(rows), Rows: rows}
}
