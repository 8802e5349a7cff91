package pipeline

import "github.com/shankar-dh/Timeseries/pkg/data"

// Schema describes the structure of a dataset.
type Schema struct {
	Columns    data.Schema
	DateColumn string
	TimeColumn string
	Target     string
}

// AirQualitySchema is the hourly air-quality sensor layout: date, time and
// 13 numeric readings, predicting CO(GT).
var AirQualitySchema = Schema{
	Columns: data.Schema{
		"Date", "Time", "CO(GT)", "PT08.S1(CO)", "NMHC(GT)", "C6H6(GT)", "PT08.S2(NMHC)",
		"NOx(GT)", "PT08.S3(NOx)", "NO2(GT)", "PT08.S4(NO2)", "PT08.S5(O3)", "T", "RH", "AH",
	},
	DateColumn: "Date",
	TimeColumn: "Time",
	Target:     "CO(GT)",
}

// WithTarget returns a copy of s predicting another column.
func (s Schema) WithTarget(target string) Schema {
	s.Target = target
	return s
}
