// Package claimsight provides context-aware document suggestions for
// insurance claim handling: case metadata goes in, ranked and cited
// excerpts from policy documents and regulatory guidelines come out.
//
// The package is the embedded flavor of the engine: it wires the vector
// index (Redis), the document catalog (PostgreSQL) and an embedding
// provider in-process, without the HTTP server in cmd/claimsight.
//
//	client, err := claimsight.New(ctx,
//	    claimsight.WithRedis("localhost:6379", ""),
//	    claimsight.WithPostgres("postgres://localhost/claimsight"),
//	    claimsight.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	results, err := client.Suggest(ctx, claimsight.CaseContext{
//	    CaseID:   "case-123",
//	    CaseType: "auto_claim",
//	    State:    "CA",
//	    Tags:     []string{"collision"},
//	})
//
// Suggestions reaching the caller always carry at least one citation;
// results whose source location cannot be resolved are dropped.
package claimsight
