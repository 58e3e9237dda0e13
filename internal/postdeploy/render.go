package postdeploy

import "strings"

// Placeholder tokens substituted into manifest templates.
const (
	TokenRegistry          = "__ECR_REGISTRY__"
	TokenArtifactsBucket   = "__ARTIFACTS_BUCKET__"
	TokenCheckpointsBucket = "__CHECKPOINTS_BUCKET__"
	TokenNamespace         = "__NAMESPACE__"
	TokenImageTag          = "__IMAGE_TAG__"
)

// RenderManifest substitutes retrieved identifiers for placeholder tokens
// in a manifest template. Unknown text is left untouched.
func RenderManifest(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		pairs = append(pairs, token, value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// TokenValues builds the substitution map for the current run.
func TokenValues(outputs StackOutputs, namespace, imageTag string) map[string]string {
	return map[string]string{
		TokenRegistry:          outputs.Registry,
		TokenArtifactsBucket:   outputs.ArtifactsBucket,
		TokenCheckpointsBucket: outputs.CheckpointsBucket,
		TokenNamespace:         namespace,
		TokenImageTag:          imageTag,
	}
}
