package semantic

// DefaultModel is used when no model is configured and as the single fallback
// when the configured model cannot be acquired.
const DefaultModel = "all-MiniLM-L6-v2"

// ModelInfo describes an entry of the model catalog.
type ModelInfo struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Dimensions  string `yaml:"dimensions" json:"dimensions"`
	Speed       string `yaml:"speed" json:"speed"`
	Quality     string `yaml:"quality" json:"quality"`
}

var catalog = []ModelInfo{
	{Name: "all-MiniLM-L6-v2", Description: "Fast and efficient model, good for most tasks", Dimensions: "384", Speed: "Fast", Quality: "Good"},
	{Name: "all-mpnet-base-v2", Description: "Best overall quality, slower but more accurate", Dimensions: "768", Speed: "Slower", Quality: "Excellent"},
	{Name: "all-distilroberta-v1", Description: "Good balance of speed and quality", Dimensions: "768", Speed: "Medium", Quality: "Very Good"},
	{Name: "paraphrase-MiniLM-L6-v2", Description: "Optimized for paraphrase detection", Dimensions: "384", Speed: "Fast", Quality: "Good for paraphrases"},
	{Name: "multi-qa-MiniLM-L6-cos-v1", Description: "Optimized for question-answer pairs", Dimensions: "384", Speed: "Fast", Quality: "Good for Q&A"},
}

// ListAvailableModels returns the static catalog of model identifiers.
func ListAvailableModels() []string {
	out := make([]string, len(catalog))
	for i, m := range catalog {
		out[i] = m.Name
	}
	return out
}

// ModelDetails describes a model. Identifiers outside the catalog get a
// generic "Custom model" entry.
func ModelDetails(name string) ModelInfo {
	for _, m := range catalog {
		if m.Name == name {
			return m
		}
	}
	return ModelInfo{Name: name, Description: "Custom model", Dimensions: "Variable", Speed: "Unknown", Quality: "Unknown"}
}
