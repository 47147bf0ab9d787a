package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxFormRows 表单页面一次最多提交的行数
const MaxFormRows = 5

const formPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width,initial-scale=1"/>
<title>URL Shortener</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif;margin:0;padding:2rem;background:#f6f7f9;color:#1d1f23}
.container{max-width:760px;margin:0 auto}
.card{background:#fff;border:1px solid #dde1e6;border-radius:12px;padding:1.25rem}
h1{font-size:1.25rem;margin:0 0 1rem}
.row{display:grid;grid-template-columns:3fr 1fr 1.5fr;gap:.5rem;margin-bottom:.5rem}
input{font-size:1rem;padding:.6rem;border-radius:8px;border:1px solid #c9ced6}
button{font-size:1rem;padding:.6rem 1rem;border-radius:8px;border:1px solid #c9ced6;background:#1d4ed8;color:#fff;cursor:pointer}
button.secondary{background:#fff;color:#1d1f23}
.result{margin-top:.75rem;padding:.6rem;border-radius:8px;background:#f0f4ff;word-break:break-all}
.error{background:#fff0f0;color:#b42318}
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h1>URL Shortener</h1>
    <form id="form">
      <div id="rows"></div>
      <button type="button" class="secondary" id="add">Add URL</button>
      <button type="submit">Shorten</button>
    </form>
    <div id="out"></div>
  </div>
</div>
<script>
const MAX_ROWS = {{MAX_ROWS}};
const rows = document.getElementById('rows');
function addRow(){
  if(rows.children.length >= MAX_ROWS) return;
  const row = document.createElement('div');
  row.className = 'row';
  row.innerHTML = '<input name="url" type="url" placeholder="Long URL" required/>'+
    '<input name="validity" type="number" min="1" placeholder="Validity (min)"/>'+
    '<input name="shortcode" type="text" placeholder="Custom shortcode"/>';
  rows.appendChild(row);
  document.getElementById('add').disabled = rows.children.length >= MAX_ROWS;
}
function text(s){ const d = document.createElement('div'); d.textContent = s; return d.innerHTML; }
async function submitRow(row){
  const url = row.querySelector('[name=url]').value.trim();
  const validity = row.querySelector('[name=validity]').value.trim();
  const shortcode = row.querySelector('[name=shortcode]').value.trim();
  if(!url) return null;
  const body = { url };
  if(validity) body.validity = Number(validity);
  if(shortcode) body.shortcode = shortcode;
  const res = await fetch('/shorturls', {
    method:'POST',
    headers:{'Content-Type':'application/json'},
    body:JSON.stringify(body)
  });
  const data = await res.json().catch(()=>({}));
  return { ok: res.ok, url, data };
}
document.getElementById('add').addEventListener('click', addRow);
document.getElementById('form').addEventListener('submit', async e => {
  e.preventDefault();
  const out = document.getElementById('out');
  out.innerHTML = '';
  for(const row of rows.children){
    const r = await submitRow(row);
    if(!r) continue;
    const div = document.createElement('div');
    if(r.ok){
      div.className = 'result';
      div.innerHTML = text(r.url)+'<br/><a target="_blank" rel="noopener" href="'+text(r.data.shortLink)+'">'+
        text(r.data.shortLink)+'</a><br/><small>Expires: '+text(r.data.expiry)+'</small>';
    } else {
      div.className = 'result error';
      div.innerHTML = text(r.url)+'<br/>'+text(r.data.message || 'Request failed');
    }
    out.appendChild(div);
  }
});
addRow();
</script>
</body>
</html>`

// Form GET / 批量创建短链的页面
func Form(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", renderedForm)
}

var renderedForm = []byte(strings.Replace(formPage, "{{MAX_ROWS}}", strconv.Itoa(MaxFormRows), 1))
