package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// settingsSection is the key clients nest our settings under.
const settingsSection = "sysy-lsp"

// DidChangeConfiguration handles workspace configuration changes from the client.
// The settings are expected as
//
//	{
//	  "sysy-lsp": {
//	    "hoverMaxLength": 200,
//	    "maxCompletionItems": 200,
//	    "semanticModel": true,
//	    "trace": "off"
//	  }
//	}
//
// Unknown keys are ignored. An update that fails validation is dropped as a
// whole. semanticModel only affects documents opened afterwards.
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv := notificationServer(context)
	if srv == nil {
		return nil
	}

	settingsMap, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	settings, ok := settingsMap[settingsSection].(map[string]any)
	if !ok {
		return nil
	}

	cfg := srv.Config()
	if v, ok := settings["hoverMaxLength"].(float64); ok {
		cfg.HoverMaxLength = int(v)
	}
	if v, ok := settings["maxCompletionItems"].(float64); ok {
		cfg.MaxCompletionItems = int(v)
	}
	if v, ok := settings["semanticModel"].(bool); ok {
		cfg.SemanticModel = v
	}
	if v, ok := settings["trace"].(string); ok {
		cfg.Trace = v
	}

	if err := cfg.Validate(); err != nil {
		log.Warningf("Ignoring configuration change: %s", err)
		return nil
	}

	srv.UpdateConfig(func(current *server.Config) {
		*current = *cfg
	})
	protocol.SetTraceValue(protocol.TraceValue(cfg.Trace))
	log.Infof("Configuration updated: %+v", *cfg)
	return nil
}
