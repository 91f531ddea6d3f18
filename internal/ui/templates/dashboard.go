// Package templates holds the dashboard page shell. The page carries the two
// controls and two plotly containers; datastar signals wire every control
// change to the SSE recompute endpoint.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"classicmodels-dashboard/internal/services"
)

type dashboardData struct {
	Min   int64
	Max   int64
	Marks []services.Mark
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Classic Models Dashboard</title>
<script src="https://cdn.jsdelivr.net/npm/@starfederation/datastar@1.0.2/bundles/datastar.js" type="module"></script>
<script src="https://cdn.jsdelivr.net/npm/plotly.js-dist-min@2.35.2/plotly.min.js"></script>
<style>
.layout { max-width: 960px; margin: 0 auto; font-family: sans-serif; }
.title { margin-bottom: 0; }
.subtitle { margin-top: 0.25rem; color: #555; }
.timeline-controls { display: flex; gap: 1.5rem; align-items: center; margin: 1rem 0; }
.slider { flex: 1; display: flex; flex-direction: column; }
.slider-marks { display: flex; justify-content: space-between; font-size: 0.75rem; color: #777; }
</style>
</head>
<body>
<div class="layout"
     data-signals='{"byCountry": false, "timeRange": [{{.Min}}, {{.Max}}], "timelineChart": {"data": [], "layout": {}}, "productsChart": {"data": [], "layout": {}}}'
     data-on-load="@get('/sse/charts')">
  <h1 class="title">Classic Models Dashboard</h1>
  <h4 class="subtitle">My subtitle for my cool dashboard</h4>

  <div id="timeline" data-effect="Plotly.react('timeline', $timelineChart.data, $timelineChart.layout)"></div>

  <div class="timeline-controls">
    <label>
      <input type="checkbox" data-bind="byCountry" data-on-change="@get('/sse/charts')">
      By Country
    </label>
    <div class="slider">
      <input type="range" min="{{.Min}}" max="{{.Max}}" list="year-marks"
             data-attr-value="$timeRange[0]"
             data-on-change="$timeRange = [evt.target.valueAsNumber, $timeRange[1]]; @get('/sse/charts')">
      <input type="range" min="{{.Min}}" max="{{.Max}}" list="year-marks"
             data-attr-value="$timeRange[1]"
             data-on-change="$timeRange = [$timeRange[0], evt.target.valueAsNumber]; @get('/sse/charts')">
      <datalist id="year-marks">
        {{range .Marks}}<option value="{{.Timestamp}}" label="{{.Label}}"></option>
        {{end}}
      </datalist>
      <div class="slider-marks">
        {{range .Marks}}<span>{{.Label}}</span>{{end}}
      </div>
    </div>
  </div>

  <div id="products" data-effect="Plotly.react('products', $productsChart.data, $productsChart.layout)"></div>
</div>
</body>
</html>
`))

// Dashboard renders the page shell. The slider is bounded by the dataset's
// observed min/max date with quarterly marks, matching the startup bootstrap.
func Dashboard(min, max int64, marks []services.Mark) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dashboardTemplate.Execute(w, dashboardData{Min: min, Max: max, Marks: marks})
	})
}
