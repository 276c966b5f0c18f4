package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSiteRecordsRequests(t *testing.T) {
	site := NewSite(t)
	site.Page("GET /", "<html></html>")
	site.Redirect("POST /login", "/account")
	site.Page("GET /account", "<h1>account</h1>")

	res, err := http.Get(site.URL() + "/?a=1")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(site.URL()+"/login", "application/x-www-form-urlencoded", strings.NewReader("user=x&pass=y"))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "account")

	requests := site.Requests()
	require.Len(t, requests, 3)
	require.Equal(t, "1", requests[0].Query.Get("a"))

	login := site.Find(http.MethodPost, "/login")
	require.Len(t, login, 1)
	form, err := login[0].Form()
	require.NoError(t, err)
	require.Equal(t, "x", form.Get("user"))

	site.Reset()
	require.Empty(t, site.Requests())
}

func TestRequestParts(t *testing.T) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("first", "1"))
	file, err := w.CreateFormFile("upload", "a.txt")
	require.NoError(t, err)
	_, err = file.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := Request{
		Header: http.Header{"Content-Type": []string{w.FormDataContentType()}},
		Body:   buf.Bytes(),
	}
	parts, err := req.Parts()
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, "first", parts[0].Name)
	require.Equal(t, "1", parts[0].Value)
	require.Equal(t, "a.txt", parts[1].FileName)
	require.Equal(t, "hello", parts[1].Value)

	_, err = Request{Header: http.Header{"Content-Type": []string{"text/plain"}}}.Parts()
	require.Error(t, err)
}
