package cluster

import (
	"fmt"
	"strings"
)

// FieldPrefix is the top-level document field holding all cluster assignments.
const FieldPrefix = "_cluster_"

// FieldPath returns the dotted path where labels for vectorField/alias are stored.
func FieldPath(vectorField, alias string) string {
	return FieldPrefix + "." + vectorField + "." + alias
}

// Alias builds the default alias for a model: "<name>-<n>" or "<name>", lowercased.
func Alias(modelName string, nClusters int) string {
	if nClusters > 0 {
		return strings.ToLower(fmt.Sprintf("%s-%d", modelName, nClusters))
	}
	return strings.ToLower(modelName)
}
