package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sidpatchmcp/patch"
)

// sidTools holds the state shared by the MCP tool handlers.
type sidTools struct {
	sess     *session
	deviceID byte
}

type registerValue struct {
	Offset int    `json:"offset"`
	Value  string `json:"value"`
}

type patchView struct {
	Settings  patch.Settings  `json:"settings"`
	Image     string          `json:"image"`
	Registers []registerValue `json:"registers,omitempty"`
}

type paramView struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Oscillator int      `json:"oscillator"`
	Min        int      `json:"min"`
	Max        int      `json:"max"`
	Labels     []string `json:"labels,omitempty"`
	Registers  []int    `json:"registers"`
}

type dumpView struct {
	DeviceID  int             `json:"device_id"`
	PatchID   int             `json:"patch_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Registers []registerValue `json:"registers"`
}

type editView struct {
	Param     string          `json:"param"`
	Value     int             `json:"value"`
	Label     string          `json:"label"`
	Registers []registerValue `json:"registers"`
	Image     string          `json:"image"`
}

func registerValues(regs patch.Registers, offsets []int) []registerValue {
	out := make([]registerValue, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, registerValue{Offset: o, Value: fmt.Sprintf("0x%02X", regs[o])})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result to JSON: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func decodePatchArg(request mcp.CallToolRequest) (patch.Settings, error) {
	patchJson, err := request.RequireString("patch-json")
	if err != nil {
		return patch.DefaultSettings(), err
	}
	return decodeSettings([]byte(patchJson))
}

func runMCP(cfg *Config) {
	sess, err := newSession(patch.DefaultSettings())
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	tools := &sidTools{sess: sess, deviceID: byte(cfg.DeviceID)}

	s := server.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		server.WithToolCapabilities(false),
	)
	tools.register(s)

	log.Println("Starting SID patch MCP server...")

	if err := server.ServeStdio(s); err != nil {
		log.Printf("Server error: %v", err)
	}
}

func (t *sidTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("sid_describe-registers",
		mcp.WithDescription("Returns the SID register map the patch compiler writes."),
	), docToolHandler)

	s.AddTool(mcp.NewTool("sid_list-params",
		mcp.WithDescription("Lists every patch parameter with its range and target registers."),
	), t.listParams)

	s.AddTool(mcp.NewTool("sid_get-patch",
		mcp.WithDescription("Returns the settings and register image of the live patch."),
	), t.getPatch)

	s.AddTool(mcp.NewTool("sid_load-patch",
		mcp.WithDescription("Replaces the live patch and rebuilds its whole register image."),
		mcp.WithString("patch-json", mcp.Required(), mcp.Description("The patch in JSON format. Missing keys keep the init patch values.")),
	), t.loadPatch)

	s.AddTool(mcp.NewTool("sid_set-param",
		mcp.WithDescription("Changes one parameter of the live patch and recompiles only the registers it owns."),
		mcp.WithString("param", mcp.Required(), mcp.Description("Parameter short name (e.g. \"ATK B\", \"CUTOFF\") or index (0-27).")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("New parameter value. See sid_list-params for ranges.")),
	), t.setParam)

	s.AddTool(mcp.NewTool("sid_compile-patch",
		mcp.WithDescription("Compiles a patch to its register image without touching the live patch."),
		mcp.WithString("patch-json", mcp.Required(), mcp.Description("The patch in JSON format.")),
	), t.compilePatch)

	s.AddTool(mcp.NewTool("sid_dump-sysex",
		mcp.WithDescription("Returns the live patch register image framed as a SysEx register dump."),
	), t.dumpSysex)

	s.AddTool(mcp.NewTool("sid_decode-sysex",
		mcp.WithDescription("Decodes a SysEx register dump back into its patch id, name and register image."),
		mcp.WithString("sysex-hex", mcp.Required(), mcp.Description("The dump as hex bytes, e.g. the output of sid_dump-sysex.")),
	), t.decodeSysex)
}

func allRegisters() []int {
	all := make([]int, patch.RegisterCount)
	for i := range all {
		all[i] = i
	}
	return all
}

//go:embed sid_registers.txt
var registerDoc string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling register documentation request.")

	return mcp.NewToolResultText(registerDoc), nil
}

func (t *sidTools) listParams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling list params request.")

	ps := patch.Params()
	out := make([]paramView, 0, len(ps))
	for _, p := range ps {
		regs := []int{}
		if p.Routed() {
			regs = p.Offsets()
		}
		out = append(out, paramView{
			Index:      p.Index,
			Name:       p.Name,
			Kind:       p.Kind.String(),
			Oscillator: p.Osc,
			Min:        p.Enc.Min,
			Max:        p.Enc.Max,
			Labels:     p.Enc.Labels,
			Registers:  regs,
		})
	}
	return jsonResult(out)
}

func (t *sidTools) getPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling get patch request.")

	s, regs := t.sess.snapshot()
	return jsonResult(patchView{Settings: s, Image: regs.String()})
}

func (t *sidTools) loadPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling load patch request.")

	s, err := decodePatchArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	regs, err := t.sess.load(s)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Printf("[mcp] Loaded patch %d %q: %s", s.ID, s.Name, regs)

	return jsonResult(patchView{Settings: s, Image: regs.String()})
}

func (t *sidTools) setParam(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling set param request.")

	p, err := resolveParam(request.GetArguments()["param"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := request.RequireInt("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	regs, err := t.sess.set(p, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Printf("[mcp] %s = %s", p.Name, p.Label(value))

	return jsonResult(editView{
		Param:     p.Name,
		Value:     value,
		Label:     p.Label(value),
		Registers: registerValues(regs, p.Offsets()),
		Image:     regs.String(),
	})
}

func (t *sidTools) compilePatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling compile patch request.")

	s, err := decodePatchArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	regs := patch.Compile(&s)
	return jsonResult(patchView{Settings: s, Image: regs.String(), Registers: registerValues(regs, allRegisters())})
}

func (t *sidTools) dumpSysex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling SysEx dump request.")

	s, regs := t.sess.snapshot()
	msg, err := EncodeDump(t.deviceID, s.ID, s.Name, regs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build register dump: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("% X", msg.Bytes())), nil
}

func (t *sidTools) decodeSysex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling SysEx decode request.")

	text, err := request.RequireString("sysex-hex")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := ParseDump(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := DecodeDump(msg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(dumpView{
		DeviceID:  int(d.DeviceID),
		PatchID:   d.PatchID,
		Name:      d.Name,
		Image:     d.Registers.String(),
		Registers: registerValues(d.Registers, allRegisters()),
	})
}
