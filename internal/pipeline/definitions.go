package pipeline

import (
	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/types"
)

const (
	labelYear        = "Year"
	labelMonth       = "Month"
	labelVehicleType = "Vehicle Type"
	labelRecession   = "Recession"
	labelSales       = "Automobile Sales"
	labelAdvertising = "Advertising Expenditure"
)

var registry = map[types.PipelineID]Definition{
	types.PipelineYearlySales: {
		ID:      types.PipelineYearlySales,
		Title:   "Yearly Automobile Sales",
		Kind:    types.ChartLine,
		XLabel:  labelYear,
		YLabel:  labelSales,
		Dims:    []dataset.Dimension{dataset.ByYear},
		Measure: dataset.AutomobileSales,
		Reduce:  dataset.Mean,
	},
	types.PipelineSeasonality: {
		ID:         types.PipelineSeasonality,
		Title:      "Seasonality Impact on Automobile Sales",
		Kind:       types.ChartScatter,
		XLabel:     labelMonth,
		YLabel:     labelSales,
		GroupLabel: labelYear,
		Dims:       []dataset.Dimension{dataset.ByMonth, dataset.ByYear},
		Measure:    dataset.AutomobileSales,
		Reduce:     dataset.Mean,
		Sized:      true,
	},
	types.PipelineRecessionComparisonBar: {
		ID:         types.PipelineRecessionComparisonBar,
		Title:      "Sales Trend: Recession vs Non-Recession",
		Kind:       types.ChartBar,
		XLabel:     labelVehicleType,
		YLabel:     labelSales,
		GroupLabel: labelRecession,
		Dims:       []dataset.Dimension{dataset.ByVehicleType, dataset.ByRecession},
		Measure:    dataset.AutomobileSales,
		Reduce:     dataset.Mean,
	},
	types.PipelineAdvertisingByRecession: {
		ID:      types.PipelineAdvertisingByRecession,
		Title:   "Advertising Expenditure: Recession vs Non-Recession",
		Kind:    types.ChartPie,
		XLabel:  labelRecession,
		YLabel:  labelAdvertising,
		Dims:    []dataset.Dimension{dataset.ByRecession},
		Measure: dataset.AdvertisingExpenditure,
		Reduce:  dataset.Sum,
	},
	types.PipelineRecessionSalesTrend: {
		ID:      types.PipelineRecessionSalesTrend,
		Title:   "Average Automobile Sales Fluctuation over Recession Periods",
		Kind:    types.ChartLine,
		XLabel:  labelYear,
		YLabel:  labelSales,
		Filter:  []dataset.Predicate{dataset.RecessionOnly},
		Dims:    []dataset.Dimension{dataset.ByYear},
		Measure: dataset.AutomobileSales,
		Reduce:  dataset.Mean,
	},
	types.PipelineSalesByVehicleType: {
		ID:         types.PipelineSalesByVehicleType,
		Title:      "Sales Trends by Vehicle Type During Recession",
		Kind:       types.ChartLine,
		XLabel:     labelYear,
		YLabel:     labelSales,
		GroupLabel: labelVehicleType,
		Filter:     []dataset.Predicate{dataset.RecessionOnly},
		Dims:       []dataset.Dimension{dataset.ByYear, dataset.ByVehicleType},
		Measure:    dataset.AutomobileSales,
		Reduce:     dataset.Mean,
	},
	types.PipelineAdvertisingByVehicleType: {
		ID:      types.PipelineAdvertisingByVehicleType,
		Title:   "Advertising Expenditure Share by Vehicle Type During Recession",
		Kind:    types.ChartPie,
		XLabel:  labelVehicleType,
		YLabel:  labelAdvertising,
		Filter:  []dataset.Predicate{dataset.RecessionOnly},
		Dims:    []dataset.Dimension{dataset.ByVehicleType},
		Measure: dataset.AdvertisingExpenditure,
		Reduce:  dataset.Sum,
	},
	// Same grouping as sales-by-vehicle-type, kept so the recession view
	// still shows four charts. The unemployment_rate column is not joined.
	types.PipelineUnemploymentEffect: {
		ID:         types.PipelineUnemploymentEffect,
		Title:      "Effect of Unemployment Rate on Vehicle Sales",
		Kind:       types.ChartLine,
		XLabel:     labelYear,
		YLabel:     labelSales,
		GroupLabel: labelVehicleType,
		Filter:     []dataset.Predicate{dataset.RecessionOnly},
		Dims:       []dataset.Dimension{dataset.ByYear, dataset.ByVehicleType},
		Measure:    dataset.AutomobileSales,
		Reduce:     dataset.Mean,
	},
}

// IDs returns every registered pipeline id in dashboard order
func IDs() []types.PipelineID {
	return []types.PipelineID{
		types.PipelineYearlySales,
		types.PipelineSeasonality,
		types.PipelineRecessionComparisonBar,
		types.PipelineAdvertisingByRecession,
		types.PipelineRecessionSalesTrend,
		types.PipelineSalesByVehicleType,
		types.PipelineAdvertisingByVehicleType,
		types.PipelineUnemploymentEffect,
	}
}
