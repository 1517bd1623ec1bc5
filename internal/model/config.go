package model

type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Router   RouterConfig   `yaml:"router"`
	Reward   RewardConfig   `yaml:"reward"`
	Feedback FeedbackConfig `yaml:"feedback"`
	History  HistoryConfig  `yaml:"history"`
	Billing  BillingConfig  `yaml:"billing"`
	Memory   MemoryConfig   `yaml:"memory"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type WorkflowConfig struct {
	MaxAttempts   int `yaml:"max_attempts"`
	BackoffBaseMS int `yaml:"backoff_base_ms"`
	BackoffCapMS  int `yaml:"backoff_cap_ms"`
	PoolSize      int `yaml:"pool_size"`
}

type RouterConfig struct {
	CacheSize        int      `yaml:"cache_size"`
	ShortPromptChars int      `yaml:"short_prompt_chars"`
	LowTokenBudget   int      `yaml:"low_token_budget"`
	EscalateKeywords []string `yaml:"escalate_keywords,omitempty"`
	LocalURL         string   `yaml:"local_url"`
	TimeoutSec       int      `yaml:"timeout_sec"`
}

type RewardConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	L2           float64 `yaml:"l2"`
}

type FeedbackConfig struct {
	TrainingDir string `yaml:"training_dir"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

type BillingConfig struct {
	FreePlanLimit int `yaml:"free_plan_limit"`
}

type MemoryConfig struct {
	PersistPath string `yaml:"persist_path,omitempty"`
	EmbedDims   int    `yaml:"embed_dims"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Project: ProjectConfig{Name: "leadflow"},
		Workflow: WorkflowConfig{
			MaxAttempts:   3,
			BackoffBaseMS: 1000,
			BackoffCapMS:  5000,
			PoolSize:      4,
		},
		Router: RouterConfig{
			CacheSize:        128,
			ShortPromptChars: 500,
			LowTokenBudget:   200,
			EscalateKeywords: []string{"financial", "strategic"},
			LocalURL:         "http://localhost:11434/api/generate",
			TimeoutSec:       15,
		},
		Reward: RewardConfig{
			LearningRate: 0.15,
			Epochs:       120,
			L2:           1e-4,
		},
		Feedback: FeedbackConfig{TrainingDir: "data"},
		History:  HistoryConfig{Capacity: 50},
		Billing:  BillingConfig{FreePlanLimit: 20},
		Memory:   MemoryConfig{EmbedDims: 64},
		Logging:  LoggingConfig{Level: "info"},
	}
}
