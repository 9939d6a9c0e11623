package sharing

const launchTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Invoice #{{.InvoiceNumber}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; padding: 48px 24px; color: #111827; text-align: center; }
  p { color: #4b5563; }
  a { color: #2563eb; }
</style>
</head>
<body>
  <h1>Opening {{title (printf "%s" .App)}}&hellip;</h1>
  <p>Invoice #{{.InvoiceNumber}} &middot; {{.Currency}} {{formatAmount .Total}}</p>
  <p><a href="{{safeURL .DeepLink}}">Open the app</a> or <a href="{{.FallbackURL}}">continue on the web</a>.</p>
  <script>
    window.location.href = {{.DeepLink}};
    setTimeout(function () { window.location.href = {{.FallbackURL}}; }, {{.FallbackMS}});
  </script>
</body>
</html>
`
