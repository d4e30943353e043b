package server

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/conneroisu/signet/internal/registry"
)

type indexData struct {
	Modules []*registry.Module
	Version string
	// Overlay is trusted HTML from the error collector.
	Overlay string
}

func indexPage(data indexData) templ.Component {
	return shell("signet", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main>\n<h1>Pages</h1>\n"); err != nil {
			return err
		}
		if err := routeTable(data.Modules).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<footer>signet %s</footer>\n</main>\n<div id=\"signet-overlay\">%s</div>\n",
			templ.EscapeString(data.Version), data.Overlay); err != nil {
			return err
		}
		return nil
	}))
}

func routeTable(modules []*registry.Module) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(modules) == 0 {
			_, err := io.WriteString(w, "<p class=\"empty\">No pages found.</p>\n")
			return err
		}

		if _, err := io.WriteString(w, "<table>\n<thead><tr><th>Route</th><th>Component</th><th>Source</th><th></th></tr></thead>\n<tbody>\n"); err != nil {
			return err
		}
		for _, m := range modules {
			_, err := fmt.Fprintf(w, "<tr><td><a href=\"/dist/%s\">%s</a></td><td>%s</td><td>%s</td><td><a href=\"/_signet/page%s\">preview</a></td></tr>\n",
				templ.EscapeString(m.OutputPath),
				templ.EscapeString(m.Route),
				templ.EscapeString(m.Name),
				templ.EscapeString(m.FilePath),
				templ.EscapeString(m.Route))
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody>\n</table>\n")
		return err
	})
}

// previewPage mounts a single compiled page into #app.
func previewPage(module *registry.Module, overlay string) templ.Component {
	return shell(module.Name, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<div id=\"app\"></div>\n<script type=\"module\" src=\"/dist/%s\"></script>\n<div id=\"signet-overlay\">%s</div>\n",
			templ.EscapeString(module.OutputPath), overlay)
		return err
	}))
}

// shell wraps body in the HTML document and the live-reload client.
func shell(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, shellOpen, templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, shellClose)
		return err
	})
}

const shellOpen = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { padding: .25rem 1rem; text-align: left; border-bottom: 1px solid #ddd; }
footer { margin-top: 2rem; color: #888; }
</style>
</head>
<body>
`

const shellClose = `<script>
(() => {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/_signet/ws");
  ws.onmessage = (event) => {
    const msg = JSON.parse(event.data);
    if (msg.type === "reload") {
      location.reload();
    } else if (msg.type === "error") {
      document.getElementById("signet-overlay").innerHTML = msg.content;
    }
  };
})();
</script>
</body>
</html>
`
