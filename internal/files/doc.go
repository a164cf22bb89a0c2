// Package files downloads a remote file to local disk.
//
// A download is one GET through the shared httpclient transport, streamed
// straight to the destination file. Non-2xx responses and transfer errors
// remove the partial file and fail with scraper.ErrTransport.
//
// Destination handling:
//   - A FileType other than Auto appends its extension when dest lacks it
//   - With Auto and no extension, the extension detected by mimetype is appended
//   - A missing parent directory is created only when enabled; otherwise the
//     file is written to the current directory under its base name
//
// Example Usage:
//
//	dl := files.NewDownloader(httpclient.NewClient(httpclient.DefaultConfig()))
//	f, err := dl.Download(ctx, "scrapeme.live/wp-content/uploads/2018/08/001.png", "bulbasaur", scraper.SchemeHTTPS, files.PNG)
package files
