package config

// Credential is a required setting and whether it is present.
type Credential struct {
	Name string
	Set  bool
}

// Credentials lists the settings the selected providers need, in a stable
// order.
func (c Config) Credentials() []Credential {
	var creds []Credential
	if c.Embeddings.Provider == ProviderGemini || c.LLM.Provider == ProviderGemini {
		creds = append(creds, Credential{Name: EnvGoogleAPIKey, Set: c.Google.APIKey != ""})
	}
	if c.VectorStore.Type == StoreElasticsearch {
		creds = append(creds, Credential{
			Name: EnvElasticsearchAddresses,
			Set:  len(c.VectorStore.Elasticsearch.Addresses) > 0,
		})
	}
	return creds
}

// Missing returns the names of the credentials that are not set.
func (c Config) Missing() []string {
	var missing []string
	for _, cred := range c.Credentials() {
		if !cred.Set {
			missing = append(missing, cred.Name)
		}
	}
	return missing
}
