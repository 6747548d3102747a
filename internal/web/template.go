package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ir-remote/internal/status"
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
	"hex2": func(v uint8) string { return fmt.Sprintf("0x%02X", v) },
	"hex4": func(v uint16) string { return fmt.Sprintf("0x%04X", v) },
	"orAny": func(s string) string {
		if s == "" {
			return "any"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>IR Remote</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.down { color: green; font-weight: bold; }
.up { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>IR Remote<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Button</h2>
<table>
<tr><th>State</th><td id="btn-state" class="{{if .Active}}down{{else}}up{{end}}">{{if .Active}}DOWN{{else}}UP{{end}}</td></tr>
<tr><th>Last event</th><td id="btn-event">-</td></tr>
<tr><th>Address</th><td id="btn-address">{{hex4 .Session.Address}}</td></tr>
<tr><th>Command</th><td id="btn-command">{{hex2 .Session.Command}}</td></tr>
<tr><th>Presses</th><td id="btn-press">{{.Session.PressCount}}</td></tr>
<tr><th>Holds</th><td id="btn-hold">{{.Session.HoldCount}}</td></tr>
<tr><th>Timeout</th><td id="btn-timeout">{{.Session.Timeout}}</td></tr>
</table>

<h2>Decoder</h2>
<table>
<tr><th>Last frame</th><td>{{.LastFrame}}</td></tr>
<tr><th>Data frames</th><td>{{.Decoder.DataFrames}}</td></tr>
<tr><th>Repeat frames</th><td>{{.Decoder.RepeatFrames}}</td></tr>
<tr><th>Errors</th><td>{{.Decoder.Errors}}</td></tr>
<tr><th>Overruns</th><td>{{.Decoder.Overruns}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}} ({{.Config.Format}})</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Holds</th><td>{{.Counts.Holds}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Releases}}</td></tr>
<tr><th>Ignored</th><td>{{.Counts.Ignored}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Line</th><td>{{.Config.Chip}} pin {{.Config.Pin}}</td></tr>
<tr><th>Address filter</th><td>{{orAny .Config.FilterAddress}}</td></tr>
<tr><th>Command filter</th><td>{{orAny .Config.WatchCommand}}</td></tr>
<tr><th>Hold debounce</th><td>{{.Config.HoldDebounce}}</td></tr>
<tr><th>Release timeout</th><td>{{.Config.ReleaseTimeoutMs}}ms</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var fields = ["event", "address", "command", "press", "hold", "timeout"];
  var el = {};
  fields.forEach(function(f) { el[f] = document.getElementById("btn-" + f); });
  var stateEl = document.getElementById("btn-state");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(m) {
      try {
        var e = JSON.parse(m.data);
        var down = e.event !== "RELEASE";
        stateEl.textContent = down ? "DOWN" : "UP";
        stateEl.className = down ? "down" : "up";
        el.event.textContent = e.event;
        el.address.textContent = e.address;
        el.command.textContent = e.command;
        el.press.textContent = e.press_count;
        el.hold.textContent = e.hold_count;
        el.timeout.textContent = e.timeout;
      } catch (err) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
