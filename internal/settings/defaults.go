package settings

// DefaultSpecs lists every tunable recognized per spec §6's environment
// variable catalogue, with the defaults the teacher's config.go and the
// original Python implementation's settings module carried.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "openrouter_api_key", EnvVar: "OPENROUTER_API_KEY", UserPath: "llm.openrouter_api_key", Kind: KindString, Required: true},
		{Name: "openrouter_base_url", EnvVar: "OPENROUTER_BASE_URL", Default: "https://openrouter.ai/api/v1", Kind: KindString},
		{Name: "local_llm_base_url", EnvVar: "LOCAL_LLM_BASE_URL", Kind: KindString},
		{Name: "local_llm_api_key", EnvVar: "LOCAL_LLM_API_KEY", Kind: KindString},

		{Name: "fast_llm_provider", EnvVar: "FAST_LLM_PROVIDER", Default: "openrouter", Kind: KindString},
		{Name: "mid_llm_provider", EnvVar: "MID_LLM_PROVIDER", Default: "openrouter", Kind: KindString},
		{Name: "intelligent_llm_provider", EnvVar: "INTELLIGENT_LLM_PROVIDER", Default: "openrouter", Kind: KindString},
		{Name: "verifier_llm_provider", EnvVar: "VERIFIER_LLM_PROVIDER", Default: "openrouter", Kind: KindString},

		{Name: "web_search_provider", EnvVar: "WEB_SEARCH_PROVIDER", Default: "tavily", Kind: KindString},
		{Name: "tavily_api_key", EnvVar: "TAVILY_API_KEY", Kind: KindString},
		{Name: "linkup_api_key", EnvVar: "LINKUP_API_KEY", Kind: KindString},
		{Name: "searxng_base_url", EnvVar: "SEARXNG_BASE_URL", Kind: KindString},

		{Name: "max_decomposed_queries", EnvVar: "MAX_DECOMPOSED_QUERIES", MissionKey: "max_decomposed_queries", Default: 3, Kind: KindInt},
		{Name: "max_search_iterations", EnvVar: "MAX_SEARCH_ITERATIONS", MissionKey: "max_search_iterations", Default: 3, Kind: KindInt},
		{Name: "max_search_results", EnvVar: "MAX_SEARCH_RESULTS", Default: 5, Kind: KindInt},
		{Name: "max_doc_results", EnvVar: "MAX_DOC_RESULTS", Default: 5, Kind: KindInt},
		{Name: "initial_research_max_depth", EnvVar: "INITIAL_RESEARCH_MAX_DEPTH", Default: 2, Kind: KindInt},
		{Name: "structured_research_rounds", EnvVar: "STRUCTURED_RESEARCH_ROUNDS", MissionKey: "structured_research_rounds", Default: 2, Kind: KindInt},
		{Name: "writing_passes", EnvVar: "WRITING_PASSES", MissionKey: "writing_passes", Default: 2, Kind: KindInt},
		{Name: "thought_pad_context_limit", EnvVar: "THOUGHT_PAD_CONTEXT_LIMIT", Default: 20, Kind: KindInt},
		{Name: "max_concurrent_requests", EnvVar: "MAX_CONCURRENT_REQUESTS", Default: 5, Kind: KindInt},
		{Name: "skip_final_replanning", EnvVar: "SKIP_FINAL_REPLANNING", MissionKey: "skip_final_replanning", Default: false, Kind: KindBool},
		{Name: "max_total_depth", EnvVar: "MAX_TOTAL_DEPTH", MissionKey: "max_total_depth", Default: 3, Kind: KindInt},

		{Name: "max_planning_context_chars", EnvVar: "MAX_PLANNING_CONTEXT_CHARS", Default: 60000, Kind: KindInt},
		{Name: "max_suggestions_per_batch", EnvVar: "MAX_SUGGESTIONS_PER_BATCH", Default: 5, Kind: KindInt},

		{Name: "llm_request_timeout", EnvVar: "LLM_REQUEST_TIMEOUT", Default: 600, Kind: KindInt},
		{Name: "max_retries", EnvVar: "MAX_RETRIES", Default: 3, Kind: KindInt},
		{Name: "retry_delay", EnvVar: "RETRY_DELAY", Default: 2, Kind: KindInt},
		{Name: "web_cache_expiration_days", EnvVar: "WEB_CACHE_EXPIRATION_DAYS", Default: 7, Kind: KindInt},
		{Name: "timezone", EnvVar: "TZ", Default: "UTC", Kind: KindString},
	}
}
