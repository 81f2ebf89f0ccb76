package domain

// Stable provider identifiers referenced by routing rules and health records.
const (
	ProviderFastChat       = "fast-chat"
	ProviderHighQuality    = "high-quality-analysis"
	ProviderSummarization  = "cost-effective-summarization"
	ProviderCodeSpecialist = "code-generation-specialist"
	ProviderGeneralPurpose = "general-purpose-default"
	ProviderLocalNetwork   = "local-network"
)
