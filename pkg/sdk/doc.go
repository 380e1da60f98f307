// Package schemesearch runs government-scheme semantic search in-process.
//
// It loads a prebuilt FAISS flat index and its row-aligned metadata table,
// encodes queries with a configured embedding provider and returns the
// closest schemes in similarity order.
//
//	client, err := schemesearch.Open(ctx,
//	    schemesearch.WithIndexFile("faiss_index.bin"),
//	    schemesearch.WithCatalogFile("metadata.csv"),
//	    schemesearch.WithOpenAI("http://localhost:8080/v1", "sentence-transformers/all-MiniLM-L6-v2", ""),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res := client.Search(ctx, "pension for senior citizens")
//	if res.Err != nil {
//	    // res.Schemes is empty; the query failed
//	}
//	for _, s := range res.Schemes {
//	    fmt.Println(s.Name)
//	}
package schemesearch
