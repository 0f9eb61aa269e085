package domain

import (
	"encoding/json"
	"time"
)

// DocumentInfo is the metadata blob of a downloaded document.
type DocumentInfo struct {
	DocGUID  string    `json:"docGuid" yaml:"docGuid"`
	KbGUID   string    `json:"kbGuid,omitempty" yaml:"kbGuid,omitempty"`
	Title    string    `json:"title" yaml:"title"`
	Category string    `json:"category" yaml:"category"`
	Owner    string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Created  time.Time `json:"created" yaml:"created"`
	Modified time.Time `json:"modified" yaml:"modified"`
	DataMD5  string    `json:"dataMd5,omitempty" yaml:"dataMd5,omitempty"`
	Version  int64     `json:"version" yaml:"version"`

	// Raw keeps the info object exactly as the server sent it.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// DocumentResource is an attachment or inline resource reference.
type DocumentResource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Size int64  `json:"size" yaml:"size"`
}

// Document is a (knowledge base, document) pair with optional info and content.
type Document struct {
	KbGUID    string             `json:"kbGuid" yaml:"kbGuid"`
	DocGUID   string             `json:"docGuid" yaml:"docGuid"`
	Info      *DocumentInfo      `json:"info,omitempty" yaml:"info,omitempty"`
	HTML      string             `json:"html,omitempty" yaml:"html,omitempty"`
	Resources []DocumentResource `json:"resources,omitempty" yaml:"resources,omitempty"`
	// Raw is the response body as received.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// HasInfo reports whether the info blob was downloaded.
func (d *Document) HasInfo() bool {
	return d.Info != nil
}

// HasData reports whether raw content was downloaded.
func (d *Document) HasData() bool {
	return d.HTML != ""
}

type documentInfoWire struct {
	DocGUID      string `json:"docGuid"`
	KbGUID       string `json:"kbGuid"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Owner        string `json:"owner"`
	Created      int64  `json:"created"`
	DataModified int64  `json:"dataModified"`
	DataMD5      string `json:"dataMd5"`
	Version      int64  `json:"version"`
}

type documentWire struct {
	Info      json.RawMessage    `json:"info"`
	HTML      string             `json:"html"`
	Resources []DocumentResource `json:"resources"`
}

// ParseDocument decodes a download response body. Content is kept as sent.
func ParseDocument(kbGUID, docGUID string, body []byte) (*Document, error) {
	var dw documentWire
	if err := json.Unmarshal(body, &dw); err != nil {
		return nil, ErrMalformedResponse.WithDetails("document").WithCause(err)
	}

	doc := &Document{
		KbGUID:    kbGUID,
		DocGUID:   docGUID,
		HTML:      dw.HTML,
		Resources: dw.Resources,
	}

	if len(dw.Info) > 0 && string(dw.Info) != "null" {
		var iw documentInfoWire
		if err := json.Unmarshal(dw.Info, &iw); err != nil {
			return nil, ErrMalformedResponse.WithDetails("document info").WithCause(err)
		}
		info := &DocumentInfo{
			DocGUID:  iw.DocGUID,
			KbGUID:   iw.KbGUID,
			Title:    iw.Title,
			Category: iw.Category,
			Owner:    iw.Owner,
			Created:  fromMillis(iw.Created),
			Modified: fromMillis(iw.DataModified),
			DataMD5:  iw.DataMD5,
			Version:  iw.Version,
			Raw:      append(json.RawMessage(nil), dw.Info...),
		}
		if info.DocGUID == "" {
			info.DocGUID = docGUID
		}
		doc.Info = info
	}

	return doc, nil
}
