package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-monitor/internal/logic"
	"github.com/sweeney/plant-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"measure": func(m logic.Measure, unit string) string {
		if !m.Valid {
			return "--"
		}
		return fmt.Sprintf("%.1f%s", m.Value, unit)
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON", "DRY":
			return "on"
		case "OFF", "WET":
			return "off"
		}
		return "unknown"
	},
	"soil": status.SoilText,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Plant Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
pre { background: #eee; padding: 4px 8px; width: 16ch; }
</style>
</head>
<body>
<h1>Plant Monitor</h1>
{{if .HasCycle}}
<pre id="lcd">{{.Line1}}
{{.Line2}}</pre>

<h2>Readings</h2>
<table>
<tr><th>Temperature</th><td>{{measure .Last.Reading.Temperature " °C"}}</td></tr>
<tr><th>Humidity</th><td>{{measure .Last.Reading.Humidity " %"}}</td></tr>
<tr><th>Soil</th><td class="{{stateClass (soil .Last.Reading)}}">{{soil .Last.Reading}}</td></tr>
<tr><th>BMP Temperature</th><td>{{measure .Last.Reading.BMPTemperature " °C"}}</td></tr>
<tr><th>Pressure</th><td>{{measure .Last.Reading.Pressure " hPa"}}</td></tr>
<tr><th>Altitude</th><td>{{measure .Last.Reading.Altitude " m"}}</td></tr>
<tr><th>Light</th><td>{{measure .Last.Reading.Light ""}}</td></tr>
</table>

<h2>Actuators</h2>
<table>
<tr><th>Fan</th><td id="fan" class="{{stateClass .Fan}}">{{.Fan}}</td></tr>
<tr><th>Pump</th><td id="pump" class="{{stateClass .Pump}}">{{.Pump}}</td></tr>
</table>
{{else}}
<p>Waiting for the first cycle.</p>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic</th><td>{{.Config.Topic}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Published</th><td>{{.Counts.Published}}</td></tr>
<tr><th>Publish failures</th><td>{{.Counts.PublishFailures}}</td></tr>
<tr><th>Reconnect attempts</th><td>{{.Counts.ReconnectAttempts}}</td></tr>
<tr><th>Persist failures</th><td>{{.Counts.PersistFailures}}</td></tr>
<tr><th>Sensor failures</th><td>{{.Counts.SensorFailures}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Run</th><td>{{.Config.RunID}}</td></tr>
<tr><th>Period</th><td>{{.Config.Period}}</td></tr>
<tr><th>Publish every</th><td>{{.Config.PublishEvery}} cycles</td></tr>
<tr><th>Reconnect every</th><td>{{.Config.ReconnectEvery}} cycles</td></tr>
<tr><th>Fan on at</th><td>{{.Config.FanOnC}} °C</td></tr>
<tr><th>Soil mode</th><td>{{.Config.SoilMode}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/history.json">History</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	fan := snap.Last.FanStatus
	if fan == "" {
		fan = logic.StateUnknown
	}
	line1, line2 := logic.DisplayLines(snap.Last)

	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		Fan, Pump    string
		Line1, Line2 string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Fan:      string(fan),
		Pump:     string(snap.Last.PumpStatus()),
		Line1:    line1,
		Line2:    line2,
	}
	return indexTmpl.Execute(w, data)
}
