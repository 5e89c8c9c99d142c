package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/config"
	"github.com/yzzting/rrclaw/internal/mcpbridge"
	"github.com/yzzting/rrclaw/internal/memory"
	"github.com/yzzting/rrclaw/internal/provider"
	"github.com/yzzting/rrclaw/internal/secrets"
	"github.com/yzzting/rrclaw/internal/skills"
	"github.com/yzzting/rrclaw/internal/tools"
)

// runtime bundles everything built from configuration that the serve and
// chat commands both need, grounded on the teacher's copilot.New
// (pkg/goclaw/copilot/assistant.go) constructor, which wires provider,
// memory, skills, and tools off a single loaded Config in one place.
type runtime struct {
	cfg        *config.Config
	cfgPath    string
	logger     *slog.Logger
	memoryDB   *memory.Store
	mcpServers []*mcpbridge.Server
	skills     *agent.SkillRegistry
	loop       *agent.Loop
	cfgWatcher *config.Watcher
}

// buildSecurityPolicy translates a loaded Config into an agent.SecurityPolicy.
// cwd is the process's canonicalized working directory; WorkspaceOnly off
// widens WorkspaceDir to "/" rather than narrowing it to cwd, since
// IsPathAllowed treats WorkspaceDir as the outer boundary every path must
// descend from.
func buildSecurityPolicy(cfg *config.Config, cwd string) agent.SecurityPolicy {
	workspaceDir := cwd
	if !cfg.Security.WorkspaceOnly {
		workspaceDir = string(filepath.Separator)
	}

	allowedCommands := make(map[string]struct{}, len(cfg.Security.AllowedCommands))
	for _, c := range cfg.Security.AllowedCommands {
		allowedCommands[c] = struct{}{}
	}

	return agent.SecurityPolicy{
		Autonomy:         agent.AutonomyLevel(cfg.Security.Autonomy),
		AllowedCommands:  allowedCommands,
		WorkspaceDir:     workspaceDir,
		BlockedPaths:     cfg.Security.BlockedPaths,
		InjectionCheck:   cfg.Security.InjectionCheck,
		HTTPAllowedHosts: cfg.Security.HTTPAllowedHosts,
	}
}

// resolveConfig mirrors the teacher's resolveConfig: explicit --config flag
// first, then auto-discovery, then compiled-in defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit, _ := cmd.Root().PersistentFlags().GetString("config")
	if explicit != "" {
		cfg, err := config.Load(explicit)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, explicit, nil
	}

	if found := config.FindConfigFile(); found != "" {
		cfg, err := config.Load(found)
		if err != nil {
			return nil, "", fmt.Errorf("loading config from %s: %w", found, err)
		}
		return cfg, found, nil
	}

	return config.DefaultConfig(), config.DefaultConfigPath(), nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// buildRuntime loads config and constructs every capability/tool the Agent
// Loop needs, without starting any channel. Channel wiring and Start() are
// the caller's job (serve/chat differ there).
func buildRuntime(cmd *cobra.Command, channel agent.Channel) (*runtime, error) {
	cfg, cfgPath, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logger := newLogger(verbose)

	cwd, err := canonicalWorkspace(".")
	if err != nil {
		return nil, err
	}

	evaluator := agent.NewPolicyEvaluator(buildSecurityPolicy(cfg, cwd))
	inspector := agent.NewInjectionInspector()
	executor := agent.NewToolExecutor(evaluator, inspector, channel, logger)

	// Watch config.toml for writes (e.g. from the config tool's "set"
	// action or a manual edit) and hot-reload the active SecurityPolicy —
	// host allowlist, autonomy, blocked paths — without a restart, per
	// SPEC_FULL.md's "write DB, read memory, never sync" prohibition.
	watcher, err := config.NewWatcher(cfgPath, func(newCfg *config.Config) {
		evaluator.UpdatePolicy(buildSecurityPolicy(newCfg, cwd))
		logger.Info("security policy reloaded from config change", "path", cfgPath)
	})
	if err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	}

	providerName := cfg.Default.Provider
	providerSection, ok := cfg.Providers[providerName]
	if !ok {
		providerSection = config.ProviderSection{}
	}
	apiKey := secrets.ResolveAPIKey(providerName, providerSection.APIKey, logger)

	var llmProvider agent.Provider
	switch providerName {
	case "anthropic":
		llmProvider = provider.NewAnthropicProvider(providerSection.BaseURL, apiKey, resolveModel(providerSection.Model, cfg.Default.Model), logger)
	default:
		llmProvider = provider.NewOpenAIProvider(providerSection.BaseURL, apiKey, resolveModel(providerSection.Model, cfg.Default.Model), logger)
	}

	dbPath := cfg.Memory.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(defaultDataDir(), "memory.db")
	} else if strings.HasPrefix(dbPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dbPath = filepath.Join(home, dbPath[2:])
		}
	}
	memStore, err := memory.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening memory store: %w", err)
	}

	skillRegistry := agent.NewSkillRegistry()
	skillLoader := skills.NewLoader(filepath.Join(defaultHomeDir(), "skills"), filepath.Join(".rrclaw", "skills"), nil)
	if err := skillLoader.LoadAll(skillRegistry); err != nil {
		logger.Warn("skill loading incomplete", "error", err)
	}

	executor.Register(tools.NewShellTool())
	executor.Register(tools.NewFileReadTool())
	executor.Register(tools.NewFileWriteTool())
	executor.Register(tools.NewGitTool())
	executor.Register(tools.NewHTTPRequestTool())
	executor.Register(tools.NewMemoryRecallTool(memStore))
	executor.Register(tools.NewMemorySaveTool(memStore))
	executor.Register(tools.NewConfigTool(cfgPath))
	executor.Register(tools.NewSkillTool(skillRegistry))
	executor.Register(tools.NewSelfInfoTool(Version, providerName, resolveModel(providerSection.Model, cfg.Default.Model)))

	var mcpServers []*mcpbridge.Server
	for _, serverCfg := range cfg.MCP.Servers {
		srv, err := mcpbridge.Connect(cmd.Context(), serverCfg, logger)
		if err != nil {
			logger.Error("mcp server connection failed", "server", serverCfg.Name, "error", err)
			continue
		}
		mcpTools, err := srv.Tools(cmd.Context())
		if err != nil {
			logger.Error("mcp tool listing failed", "server", serverCfg.Name, "error", err)
			srv.Close()
			continue
		}
		for _, t := range mcpTools {
			executor.Register(t)
		}
		mcpServers = append(mcpServers, srv)
	}

	assembler := agent.NewPromptAssembler("")
	loop := agent.NewLoop(llmProvider, executor, assembler, skillRegistry, memStore, evaluator, resolveModel(providerSection.Model, cfg.Default.Model), logger)

	return &runtime{
		cfg:        cfg,
		cfgPath:    cfgPath,
		logger:     logger,
		memoryDB:   memStore,
		mcpServers: mcpServers,
		skills:     skillRegistry,
		loop:       loop,
		cfgWatcher: watcher,
	}, nil
}

func (r *runtime) Close() {
	if r.cfgWatcher != nil {
		_ = r.cfgWatcher.Close()
	}
	for _, srv := range r.mcpServers {
		_ = srv.Close()
	}
	if r.memoryDB != nil {
		_ = r.memoryDB.Close()
	}
}

func resolveModel(providerModel, defaultModel string) string {
	if providerModel != "" {
		return providerModel
	}
	return defaultModel
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rrclaw"
	}
	return filepath.Join(home, ".rrclaw")
}

func defaultDataDir() string {
	return filepath.Join(defaultHomeDir(), "data")
}

func canonicalWorkspace(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}
