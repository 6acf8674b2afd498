package templates

import (
	"html/template"
	"net/http"
	"strings"

	"variantchess/internal/logging"
	"variantchess/internal/storage"
)

var commit = "dev"

// SetCommit sets the build revision shown in page footers.
func SetCommit(c string) {
	if c != "" {
		commit = c
	}
}

// HomeData feeds the home page.
type HomeData struct {
	Variants []string
	Stats    storage.Stats
	Live     int
	Commit   string
}

// GameData feeds a match page.
type GameData struct {
	ID      string
	Token   string
	Variant string
	Rows    []string
	Status  string
	Turn    string
	Commit  string
}

const layout = `{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 44rem; }
table.board { border-collapse: collapse; font-family: monospace; font-size: 1.4rem; }
table.board td { width: 2rem; height: 2rem; text-align: center; border: 1px solid #999; }
footer { margin-top: 2rem; color: #777; font-size: .8rem; }
</style>
</head>
<body>{{end}}
{{define "foot"}}<footer>variantchess {{.}}</footer>
</body>
</html>{{end}}`

var homeTmpl = template.Must(template.New("home").Parse(layout + `
{{template "head" "variantchess"}}
<h1>variantchess</h1>
<p>{{.Live}} live, {{.Stats.Started}} started, {{.Stats.Completed}} completed.</p>
<form method="post" action="/new">
<label>Variant <select name="variant">{{range .Variants}}<option>{{.}}</option>{{end}}</select></label><br>
<label>White <input name="seat" value="human"></label><br>
<label>Black <input name="seat" value="greedy"></label><br>
<label>Time <input name="time" value="untimed" placeholder="5m+2s or 30s/move"></label><br>
<label>Delay <input name="delay" placeholder="2s"></label><br>
<label>FEN <input name="fen" size="50"></label><br>
<button type="submit">Start</button>
</form>
<p>Seats take human, random, greedy, resign or an engine URL (ws://...).</p>
{{template "foot" .Commit}}`))

var gameTmpl = template.Must(template.New("game").Funcs(template.FuncMap{"cells": cells}).Parse(layout + `
{{template "head" .Variant}}
<h1>{{.Variant}}</h1>
<p id="status">{{if .Status}}{{.Status}}{{else}}{{.Turn}} to move{{end}}</p>
<table class="board" id="board">{{range .Rows}}<tr>{{range cells .}}<td>{{.}}</td>{{end}}</tr>{{end}}</table>
{{if .Token}}<form id="move">
<input name="move" placeholder="e2e4" autofocus>
<label><input type="checkbox" name="offerDraw"> offer draw</label>
<button type="submit">Move</button>
<button type="button" id="resign">Resign</button>
</form>{{end}}
<p id="error"></p>
<script>
const id = {{.ID}}, token = {{.Token}};
function render(s) {
  if (!s.board) return;
  document.getElementById("board").innerHTML = s.board.map(r =>
    "<tr>" + [...r].map(c => "<td>" + c + "</td>").join("") + "</tr>").join("");
  document.getElementById("status").textContent = s.status || (s.turn + " to move");
}
new EventSource("/sse/" + id + "?token=" + encodeURIComponent(token)).onmessage = e => render(JSON.parse(e.data));
async function send(body) {
  body.token = token;
  const r = await fetch("/move/" + id, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)});
  const j = await r.json();
  document.getElementById("error").textContent = j.ok ? "" : j.error;
  if (j.state) render(j.state);
}
const form = document.getElementById("move");
if (form) {
  form.onsubmit = e => { e.preventDefault(); send({move: form.move.value, offerDraw: form.offerDraw.checked}); form.move.value = ""; };
  document.getElementById("resign").onclick = () => send({resign: true});
}
</script>
{{template "foot" .Commit}}`))

func cells(row string) []string { return strings.Split(row, "") }

func write(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := t.Execute(w, data); err != nil {
		logging.Warn("template failed", "template", t.Name(), "err", err)
	}
}

// WriteHomeHTML serves the home page
func WriteHomeHTML(w http.ResponseWriter, d HomeData) {
	if d.Commit == "" {
		d.Commit = commit
	}
	write(w, homeTmpl, d)
}

// WriteGameHTML serves a match page
func WriteGameHTML(w http.ResponseWriter, d GameData) {
	if d.Commit == "" {
		d.Commit = commit
	}
	write(w, gameTmpl, d)
}
