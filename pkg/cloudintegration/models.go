package cloudintegration

// IntegrationID names a hosting or issue provider as the extension knows it.
type IntegrationID string

const (
	GitHub           IntegrationID = "github"
	GitHubEnterprise IntegrationID = "github-enterprise"
	GitLab           IntegrationID = "gitlab"
	GitLabSelfHosted IntegrationID = "gitlab-self-hosted"
	Bitbucket        IntegrationID = "bitbucket"
	BitbucketServer  IntegrationID = "bitbucket-server"
	AzureDevOps      IntegrationID = "azure-devops"
	Jira             IntegrationID = "jira"
)

// cloudIntegrationTypes maps integration ids to the provider names of the token API.
var cloudIntegrationTypes = map[IntegrationID]string{
	GitHub:           "github",
	GitHubEnterprise: "github_enterprise",
	GitLab:           "gitlab",
	GitLabSelfHosted: "gitlab_self_hosted",
	Bitbucket:        "bitbucket",
	BitbucketServer:  "bitbucket_server",
	AzureDevOps:      "azure",
	Jira:             "jira",
}

// CloudType returns the token API provider name for id.
func CloudType(id IntegrationID) (string, bool) {
	t, ok := cloudIntegrationTypes[id]
	return t, ok
}

// IntegrationIDs lists every supported id.
func IntegrationIDs() []IntegrationID {
	return []IntegrationID{GitHub, GitHubEnterprise, GitLab, GitLabSelfHosted, Bitbucket, BitbucketServer, AzureDevOps, Jira}
}

// Connection is a provider the account has connected in the cloud.
type Connection struct {
	Type     string `json:"type"`
	Provider string `json:"provider"`
	Domain   string `json:"domain,omitempty"`
}

// Session is the token material of one connection.
type Session struct {
	Type        string `json:"type"`
	AccessToken string `json:"accessToken"`
	Domain      string `json:"domain,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
	Scopes      string `json:"scopes,omitempty"`
}
