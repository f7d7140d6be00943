package remote

// LinkSettings are the settings of a newly created shared link.
type LinkSettings struct {
	RequestedVisibility string `json:"requested_visibility"`
	Audience            string `json:"audience"`
	Access              string `json:"access"`
}

// PublicViewer is the setting set used for every published artifact.
var PublicViewer = LinkSettings{RequestedVisibility: "public", Audience: "public", Access: "viewer"}

// SharedLink is the subset of link metadata the pipeline needs.
type SharedLink struct {
	URL       string `json:"url"`
	Name      string `json:"name,omitempty"`
	PathLower string `json:"path_lower,omitempty"`
}

// Entry is one item of a folder listing.
type Entry struct {
	Tag         string `json:".tag"` // file, folder or deleted
	Name        string `json:"name"`
	PathDisplay string `json:"path_display,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// FolderPage is one page of a folder listing.
type FolderPage struct {
	Entries []Entry `json:"entries"`
	Cursor  string  `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

type createLinkRequest struct {
	Path     string       `json:"path"`
	Settings LinkSettings `json:"settings"`
}

type listLinksRequest struct {
	Path       string `json:"path"`
	DirectOnly bool   `json:"direct_only"`
}

type listLinksResponse struct {
	Links   []SharedLink `json:"links"`
	HasMore bool         `json:"has_more"`
	Cursor  string       `json:"cursor,omitempty"`
}

type listFolderRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

type listFolderContinueRequest struct {
	Cursor string `json:"cursor"`
}

type errorBody struct {
	Summary string `json:"error_summary"`
	Error   struct {
		Tag string `json:".tag"`
	} `json:"error"`
}
