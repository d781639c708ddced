// Package gmail provides a client for the Gmail API operations the MCP tools expose.
//
// A Client is built per request from an authenticated *http.Client, so the
// credentials of one tool call never leak into another:
//
//	httpClient := google.HTTPClient(ctx, tokenSource)
//	client, err := gmail.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//
//	labels, err := client.ListLabels(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(gmail.FormatLabels(labels))
//
// Supported operations:
//   - labels: list (split into system and user labels), create
//   - messages: search with metadata headers, read with decoded body
//   - compose: send and draft RFC 2822 messages (plain, HTML or multipart/alternative)
//
// The Format* functions render results as the plain text returned to MCP clients.
package gmail
