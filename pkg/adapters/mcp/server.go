package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SettingsURI is the resource exposing the configured bounds.
const SettingsURI = "heartaxis://settings"

// Calculator defines what the MCP server needs from the service.
type Calculator interface {
	Settings() domain.Settings
	Calculate(useSums bool, in domain.InputSet) domain.Outcome
	Validate(useSums bool, in domain.InputSet) domain.ValidationResult
}

// InputArgs are the arguments shared by every tool. Omitted readings are
// treated as missing.
type InputArgs struct {
	UseSums bool     `json:"use_sums"`
	SumI    *float64 `json:"sumI,omitempty"`
	SumIII  *float64 `json:"sumIII,omitempty"`
	R1      *float64 `json:"r1,omitempty"`
	QS1     *float64 `json:"qs1,omitempty"`
	R3      *float64 `json:"r3,omitempty"`
	QS3     *float64 `json:"qs3,omitempty"`
}

// Inputs converts the arguments into a snapshot.
func (a InputArgs) Inputs() domain.InputSet {
	value := func(p *float64) domain.Value {
		if p == nil {
			return domain.Missing()
		}
		return domain.Number(*p)
	}
	return domain.InputSet{
		SumI:   value(a.SumI),
		SumIII: value(a.SumIII),
		R1:     value(a.R1),
		QS1:    value(a.QS1),
		R3:     value(a.R3),
		QS3:    value(a.QS3),
	}
}

// AxisResponse is the structured result of calculate_axis.
type AxisResponse struct {
	Mode        string              `json:"mode" jsonschema_description:"Active mode: sums or waves"`
	Angle       *float64            `json:"angle,omitempty" jsonschema_description:"Axis in degrees, absent when invalid"`
	Magnitude   *float64            `json:"magnitude,omitempty" jsonschema_description:"Length of the resultant vector"`
	Deviation   string              `json:"deviation" jsonschema_description:"normal, left, right, extreme or undetermined"`
	Display     string              `json:"display" jsonschema_description:"Formatted angle or the error marker"`
	FormInvalid bool                `json:"form_invalid" jsonschema_description:"True when no definitive angle exists"`
	Fields      map[string][]string `json:"fields,omitempty" jsonschema_description:"Violated rules per field"`
	Form        []string            `json:"form,omitempty" jsonschema_description:"Violated cross-field rules"`
}

// ValidationResponse is the structured result of validate_inputs.
type ValidationResponse struct {
	Valid  bool                `json:"valid" jsonschema_description:"True when no rule failed"`
	Fields map[string][]string `json:"fields,omitempty" jsonschema_description:"Violated rules per field"`
	Form   []string            `json:"form,omitempty" jsonschema_description:"Violated cross-field rules"`
}

// Server wraps the calculator and exposes it as an MCP Server.
type Server struct {
	calc      Calculator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(calc Calculator) *Server {
	s := &Server{
		calc:      calc,
		mcpServer: server.NewMCPServer("heartaxis-mcp", strings.TrimSpace(heartaxis.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server (used by in-process clients).
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func inputOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("use_sums", mcp.Required(), mcp.Description("true: lead sums (sumI, sumIII); false: waves (r1, qs1, r3, qs3)")),
		mcp.WithNumber("sumI", mcp.Description("Net deflection of lead I")),
		mcp.WithNumber("sumIII", mcp.Description("Net deflection of lead III")),
		mcp.WithNumber("r1", mcp.Description("R wave amplitude in lead I")),
		mcp.WithNumber("qs1", mcp.Description("Q+S wave amplitude in lead I")),
		mcp.WithNumber("r3", mcp.Description("R wave amplitude in lead III")),
		mcp.WithNumber("qs3", mcp.Description("Q+S wave amplitude in lead III")),
	}
}

func (s *Server) registerTools() {
	calcOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Validate ECG lead readings and compute the heart axis in degrees."),
		mcp.WithOutputSchema[AxisResponse](),
	}, inputOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("calculate_axis", calcOpts...), mcp.NewStructuredToolHandler(s.handleCalculate))

	validateOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Report every validation rule the readings violate, without computing the axis."),
		mcp.WithOutputSchema[ValidationResponse](),
	}, inputOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("validate_inputs", validateOpts...), mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleCalculate(ctx context.Context, request mcp.CallToolRequest, args InputArgs) (AxisResponse, error) {
	out := s.calc.Calculate(args.UseSums, args.Inputs())

	resp := AxisResponse{
		Mode:        string(out.Mode),
		Deviation:   string(out.Deviation),
		Display:     out.Display,
		FormInvalid: out.FormInvalid,
	}
	resp.Fields, resp.Form = ruleNames(out.Validation)
	if out.HasAngle() {
		angle, magnitude := out.Angle, out.Magnitude
		resp.Angle = &angle
		resp.Magnitude = &magnitude
	}
	return resp, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args InputArgs) (ValidationResponse, error) {
	res := s.calc.Validate(args.UseSums, args.Inputs())
	resp := ValidationResponse{Valid: !res.Invalid()}
	resp.Fields, resp.Form = ruleNames(res)
	return resp, nil
}

func ruleNames(res domain.ValidationResult) (map[string][]string, []string) {
	var fields map[string][]string
	for f := range res.Fields {
		rules := res.FieldRules(f)
		if len(rules) == 0 {
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		fields[string(f)] = names(rules)
	}
	return fields, names(res.Form.Rules())
}

func names(rules []domain.Rule) []string {
	if len(rules) == 0 {
		return nil
	}
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = string(r)
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SettingsURI, "Calculator Settings",
		mcp.WithResourceDescription("Bounds and default values of every field"),
		mcp.WithMIMEType("application/json"),
	), s.readSettings)
}

func (s *Server) readSettings(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.calc.Settings())
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SettingsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
