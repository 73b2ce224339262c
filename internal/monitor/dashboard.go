package monitor

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type dashboardData struct {
	Stats      Stats
	Records    []Record
	FilterUser string
	FilterChat string
	Search     string
}

// Dashboard renders the filterable message view. It auto-refreshes so the log
// can be tailed without the websocket.
func (s *Server) Dashboard(c *gin.Context) {
	filterUser := c.Query("user")
	filterChat := c.Query("chat")
	search := c.Query("search")

	data := dashboardData{
		Stats:      s.store.Stats(),
		Records:    s.store.Filter(filterUser, parseChatFilter(filterChat), search),
		FilterUser: filterUser,
		FilterChat: filterChat,
		Search:     search,
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Status(http.StatusOK)
	if err := dashboardTemplate.Execute(c.Writer, data); err != nil {
		c.String(http.StatusInternalServerError, "render failed")
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"formatTime": func(ms int64) string {
		if ms == 0 {
			return "-"
		}
		return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>Message Monitor</title>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<style>
* { margin: 0; padding: 0; box-sizing: border-box; font-family: 'Segoe UI', monospace; }
body { background: #0a0c0e; color: #e0e0e0; padding: 30px; }
.container { max-width: 1400px; margin: 0 auto; }
h1 { color: #00ff88; font-size: 28px; margin-bottom: 20px; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 24px; }
.card { background: #1e1e1e; padding: 18px; border-radius: 10px; border-bottom: 3px solid #00ff88; }
.num { font-size: 36px; font-weight: 800; color: #00ff88; }
.label { color: #888; font-size: 13px; text-transform: uppercase; }
.filters { background: #1e1e1e; padding: 18px; border-radius: 10px; margin-bottom: 24px; display: flex; gap: 12px; flex-wrap: wrap; }
input { flex: 1; min-width: 160px; padding: 10px 14px; background: #2a2a2a; border: 1px solid #444; color: white; border-radius: 6px; }
input:focus { border-color: #00ff88; outline: none; }
button, a.btn { padding: 10px 18px; background: #333; color: white; border: none; border-radius: 6px; cursor: pointer; text-decoration: none; }
table { width: 100%; border-collapse: collapse; background: #141414; border-radius: 10px; overflow: hidden; }
th { background: #1e1e1e; color: #00ff88; text-align: left; padding: 12px; font-size: 13px; text-transform: uppercase; }
td { padding: 12px; border-top: 1px solid #242424; font-size: 14px; }
.enc { color: #ff6b6b; }
.empty { padding: 40px; text-align: center; color: #666; }
</style>
</head>
<body>
<div class="container">
<h1>Message Monitor</h1>
<div class="stats">
<div class="card"><div class="num">{{.Stats.TotalMessages}}</div><div class="label">messages</div></div>
<div class="card"><div class="num">{{len .Stats.Users}}</div><div class="label">users</div></div>
<div class="card"><div class="num">{{len .Stats.Chats}}</div><div class="label">chats</div></div>
<div class="card"><div class="num">{{.Stats.Encrypted}}</div><div class="label">encrypted</div></div>
</div>
<form class="filters" method="get" action="/">
<input name="user" placeholder="filter by sender" value="{{.FilterUser}}">
<input name="chat" placeholder="filter by chat id" value="{{.FilterChat}}">
<input name="search" placeholder="search text" value="{{.Search}}">
<button type="submit">Filter</button>
<a class="btn" href="/">Reset</a>
<a class="btn" href="/export">Export</a>
<a class="btn" href="/clear">Clear</a>
</form>
<table>
<tr><th>Received</th><th>Sender</th><th>Chat</th><th>Text</th><th>Enc</th></tr>
{{range .Records}}
<tr>
<td>{{formatTime .Timestamp}}</td>
<td>{{.Sender}}</td>
<td>{{.ChatID}}</td>
<td>{{.Text}}</td>
<td>{{if .Encrypted}}<span class="enc">yes</span>{{else}}no{{end}}</td>
</tr>
{{else}}
<tr><td colspan="5" class="empty">no messages captured</td></tr>
{{end}}
</table>
</div>
</body>
</html>
`))
