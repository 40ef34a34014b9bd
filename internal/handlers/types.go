package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten"                  example:"https://example.com/very/long/path" format:"uri" json:"url"           minLength:"1"`
		TTL *int64 `doc:"Seconds until the short URL expires" example:"3600"                               json:"ttl,omitempty" minimum:"1"    required:"false"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Hash      string     `doc:"The short hash"                         example:"V1StGXR8_Z5jdHi6B-myT"                       json:"hash"`
		ShortURL  string     `doc:"The full short URL"                     example:"http://localhost:8888/V1StGXR8_Z5jdHi6B-myT" json:"shortUrl"`
		Source    string     `doc:"The original URL"                       example:"https://example.com/very/long/path"          json:"source"`
		TTL       *int64     `doc:"Seconds until the short URL expires"    example:"3600"                                        json:"ttl,omitempty"`
		ExpiresAt *time.Time `doc:"When the short URL stops redirecting"   json:"expiresAt,omitempty"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Hash string `doc:"The short hash" example:"V1StGXR8_Z5jdHi6B-myT" path:"hash"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}
