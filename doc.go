// Package clusterops is a Go client for a hosted vector database with a
// clustering workflow on top.
//
// A clustering run reads every document of a dataset that carries a vector
// field, fits a clustering model on the vectors, writes the cluster label of
// each document to "_cluster_.<vector_field>.<alias>" and stores the mean
// vector of each cluster as a centroid. Documents without the vector field
// are skipped and reported in RunResult.Skipped.
//
//	client, _ := clusterops.New(ctx,
//	    clusterops.WithCredentials("my-project", "my-key"),
//	    clusterops.WithRegion("us-east-1"),
//	)
//	defer client.Close()
//
//	km, _ := clusterops.ModelFromName("kmeans", map[string]any{"n_clusters": 10})
//	res, _ := client.Cluster().Run(ctx, clusterops.RunRequest{
//	    Dataset:     "products",
//	    VectorField: "title_vector_",
//	    Model:       km,
//	})
//
// Later calls default to the last used dataset, vector field and alias:
//
//	closest, _ := client.Cluster().Closest(ctx, clusterops.NearestParams{})
//
// # Models
//
// Any clustering backend fits one of the closed calling conventions:
// Standard (FitPredict), AttributeLabels (Fit then Labels), TrainAssign
// (Train then Assign on float32), Callable (a plain function) or Custom
// (a self-describing Clusterer). ModelFromName builds registered models;
// RegisterModel adds names.
//
// # Vectorize
//
// Client.Vectorize encodes text fields into "<field>_<model>_vector_" fields
// through an OpenAI-compatible embedding API, optionally cached in Redis.
package clusterops
