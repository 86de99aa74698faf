// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package api

import (
	"net/http"
)

// Dashboard serves the single-page demo UI. All data is fetched client-side
// from the JSON API, so the page itself is static.
func (h *Handler) Dashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(dashboardHTML)); err != nil {
		h.logger.Error().Err(err).Msg("failed to write dashboard")
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Shoplens Analytics</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #222; }
  header { background: #232946; color: #fff; padding: 1rem 2rem; }
  header h1 { margin: 0; font-size: 1.4rem; }
  main { padding: 1.5rem 2rem; max-width: 1100px; margin: 0 auto; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
  .card { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
  .card .value { font-size: 1.8rem; font-weight: 700; }
  .card .label { color: #666; font-size: .85rem; }
  section { margin-top: 2rem; }
  table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; }
  th, td { text-align: left; padding: .5rem .75rem; border-bottom: 1px solid #eee; font-size: .9rem; }
  th { background: #eef0f7; }
  .tier-high { color: #c0392b; font-weight: 600; }
  .tier-medium { color: #e67e22; }
  .tier-low { color: #27ae60; }
  button { background: #232946; color: #fff; border: 0; border-radius: 6px; padding: .5rem 1rem; cursor: pointer; }
  #status { margin-left: 1rem; color: #666; font-size: .85rem; }
</style>
</head>
<body>
<header><h1>Shoplens &mdash; Predictive E-commerce Analytics</h1></header>
<main>
  <div class="cards" id="cards"></div>

  <section>
    <h2>Highest churn risk</h2>
    <table id="risk"><thead><tr>
      <th>User</th><th>Segment</th><th>Archetype</th><th>Churn probability</th><th>Tier</th>
    </tr></thead><tbody></tbody></table>
  </section>

  <section>
    <h2>Recommendations</h2>
    <p>
      <input id="userId" placeholder="user id, e.g. U001">
      <button onclick="loadRecs()">Score</button>
      <button onclick="train()">Retrain</button>
      <span id="status"></span>
    </p>
    <table id="recs"><thead><tr>
      <th>#</th><th>Product</th><th>Score</th><th>Reasons</th>
    </tr></thead><tbody></tbody></table>
  </section>
</main>
<script>
async function getJSON(url, opts) {
  const res = await fetch(url, opts);
  const body = await res.json();
  if (!res.ok) throw new Error(body.error ? body.error.message : res.statusText);
  return body.data;
}
function card(label, value) {
  return '<div class="card"><div class="value">' + value + '</div><div class="label">' + label + '</div></div>';
}
async function refresh() {
  try {
    const o = await getJSON('/api/v1/analytics/overview');
    document.getElementById('cards').innerHTML =
      card('Users', o.users) +
      card('Products', o.products) +
      card('Churned users', o.churned_users) +
      card('Mean churn risk', (o.mean_churn_risk * 100).toFixed(1) + '%') +
      card('Churn accuracy', (o.churn_accuracy * 100).toFixed(1) + '%') +
      card('Model version', o.model_version);
    const ch = await getJSON('/api/v1/analytics/churn?top=10');
    document.querySelector('#risk tbody').innerHTML = ch.top_risk.map(u =>
      '<tr><td>' + u.user_id + '</td><td>' + u.segment + '</td><td>' + u.archetype +
      '</td><td>' + (u.churn_probability * 100).toFixed(1) + '%</td><td class="tier-' +
      u.risk_tier + '">' + u.risk_tier + '</td></tr>').join('');
  } catch (err) {
    document.getElementById('status').textContent = err.message;
  }
}
async function loadRecs() {
  const id = document.getElementById('userId').value.trim();
  if (!id) return;
  try {
    const recs = await getJSON('/api/v1/recommendations/' + encodeURIComponent(id));
    document.querySelector('#recs tbody').innerHTML = recs.map(r =>
      '<tr><td>' + r.rank + '</td><td>' + r.product_id + '</td><td>' +
      r.score.toFixed(3) + '</td><td>' + r.reasons.join(', ') + '</td></tr>').join('');
    document.getElementById('status').textContent = '';
  } catch (err) {
    document.getElementById('status').textContent = err.message;
  }
}
async function train() {
  document.getElementById('status').textContent = 'training...';
  try {
    await getJSON('/api/v1/train', { method: 'POST' });
    document.getElementById('status').textContent = 'trained';
    refresh();
  } catch (err) {
    document.getElementById('status').textContent = err.message;
  }
}
refresh();
</script>
</body>
</html>
`
