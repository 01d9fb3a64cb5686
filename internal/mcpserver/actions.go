package mcpserver

import (
	"github.com/dtnitsch/studybot/internal/app"
	"github.com/dtnitsch/studybot/pkg/extractor"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v2"
)

// MCPAction serves the tools over stdio, or over streamable HTTP with --http.
func MCPAction(c *cli.Context) error {
	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer a.Close()

	s := NewServer(Deps{
		Runner: a.Pipeline,
		Store:  a.DB,
		URLSource: func(url, title string) extractor.PageSource {
			return a.URLSource(url, title)
		},
	})

	if addr := c.String("http"); addr != "" {
		a.Logger.Info("starting MCP server", "transport", "http", "addr", addr, "endpoint", Endpoint)
		httpServer := server.NewStreamableHTTPServer(s, server.WithEndpointPath(Endpoint))
		return httpServer.Start(addr)
	}

	a.Logger.Info("starting MCP server", "transport", "stdio")
	return server.ServeStdio(s)
}
