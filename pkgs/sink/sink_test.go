package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/emersion/go-mbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/metrics"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bulk_email_0001", "bulk_email_0001"},
		{"mock email 1", "mock_email_1"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"<123.4@example.com>", "_123.4_example.com_"},
		{strings.Repeat("a", 250), strings.Repeat("a", 200)},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "doc", "eml", "bulk")
	d, err := NewDir(dir)
	require.NoError(t, err)

	f := testFixture(t, "bulk_email_0001", "<1@example.com>")
	require.NoError(t, d.Put(context.Background(), f))
	require.NoError(t, d.Close())

	data, err := os.ReadFile(filepath.Join(dir, "bulk_email_0001.eml"))
	require.NoError(t, err)
	assert.Equal(t, f.Raw, data)
}

func TestNewDir_Unwritable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewDir(filepath.Join(blocker, "sub"))
	assert.Error(t, err)
}

func TestMbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "fixtures.mbox")
	m, err := NewMbox(path)
	require.NoError(t, err)

	ids := []string{"<1@example.com>", "<2@example.com>", "<3@example.com>"}
	for _, id := range ids {
		require.NoError(t, m.Put(context.Background(), testFixture(t, "m", id)))
	}
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := mbox.NewReader(f)
	var got []string
	for {
		mr, err := r.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		raw, err := io.ReadAll(mr)
		require.NoError(t, err)
		for _, id := range ids {
			if bytes.Contains(raw, []byte("Message-Id: "+id)) {
				got = append(got, id)
			}
		}
	}
	assert.Equal(t, ids, got)
}

type mockS3Client struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(params.Body)
	m.inputs = append(m.inputs, params)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Put(t *testing.T) {
	mock := &mockS3Client{}
	s := NewS3WithClient("fixtures", "/eml/bulk/", mock)

	f := testFixture(t, "bulk_email_0007", "<7@example.com>")
	require.NoError(t, s.Put(context.Background(), f))

	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "fixtures", aws.ToString(in.Bucket))
	assert.Equal(t, "eml/bulk/bulk_email_0007.eml", aws.ToString(in.Key))
	assert.Equal(t, "message/rfc822", aws.ToString(in.ContentType))
	assert.Equal(t, int64(len(f.Raw)), aws.ToInt64(in.ContentLength))
	assert.Equal(t, f.Raw, mock.bodies[0])
	assert.Equal(t, "s3", s.Name())
}

func TestS3Key_NoPrefix(t *testing.T) {
	s := NewS3WithClient("b", "", &mockS3Client{})
	assert.Equal(t, "mock_email_1.eml", s.Key("mock_email_1"))
}

func TestS3Put_Error(t *testing.T) {
	s := NewS3WithClient("b", "", &mockS3Client{err: errBoom})
	err := s.Put(context.Background(), testFixture(t, "x", "<1@example.com>"))
	assert.ErrorIs(t, err, errBoom)
}

type mockSESClient struct {
	callCount int
	lastInput *sesv2.SendEmailInput
	err       error
}

func (m *mockSESClient) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func TestSESPut_Raw(t *testing.T) {
	mock := &mockSESClient{}
	s := NewSESWithClient(nil, mock)

	f := testFixture(t, "x", "<1@example.com>")
	require.NoError(t, s.Put(context.Background(), f))

	require.Equal(t, 1, mock.callCount)
	in := mock.lastInput
	require.NotNil(t, in.Content.Raw)
	assert.Equal(t, f.Raw, in.Content.Raw.Data)
	assert.Nil(t, in.Content.Simple)
	assert.Equal(t, "ada@example.com", aws.ToString(in.FromEmailAddress))
	assert.Nil(t, in.Destination)
}

func TestSESPut_RecipientOverride(t *testing.T) {
	mock := &mockSESClient{}
	s := NewSESWithClient([]string{"success@simulator.amazonses.com"}, mock)

	require.NoError(t, s.Put(context.Background(), testFixture(t, "x", "<1@example.com>")))
	require.NotNil(t, mock.lastInput.Destination)
	assert.Equal(t, []string{"success@simulator.amazonses.com"}, mock.lastInput.Destination.ToAddresses)
}

func TestSESPut_Error(t *testing.T) {
	s := NewSESWithClient(nil, &mockSESClient{err: errBoom})
	err := s.Put(context.Background(), testFixture(t, "x", "<1@example.com>"))
	assert.ErrorIs(t, err, errBoom)
}

func TestMulti(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	rec := metrics.New()
	m := NewMulti(nil, rec, a, b)

	require.NoError(t, m.Put(context.Background(), testFixture(t, "one", "<1@example.com>")))
	require.NoError(t, m.Put(context.Background(), testFixture(t, "two", "<2@example.com>")))
	require.NoError(t, m.Close())

	assert.Equal(t, []string{"one", "two"}, a.puts)
	assert.Equal(t, []string{"one", "two"}, b.puts)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 2, m.Len())
}

func TestMulti_StopsAtFirstFailure(t *testing.T) {
	a := &recordingSink{name: "a", putErr: errBoom}
	b := &recordingSink{name: "b"}
	m := NewMulti(nil, nil, a, b)

	err := m.Put(context.Background(), testFixture(t, "one", "<1@example.com>"))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "a: one")
	assert.Empty(t, b.puts)
}

func TestMulti_CloseJoinsErrors(t *testing.T) {
	a := &recordingSink{name: "a", err: errBoom}
	b := &recordingSink{name: "b"}
	err := NewMulti(nil, nil, a, b).Close()
	require.ErrorIs(t, err, errBoom)
	assert.True(t, b.closed)
}

func TestOpen_Formats(t *testing.T) {
	tests := []struct {
		format string
		sinks  []string
		want   []string
	}{
		{config.FormatEML, []string{config.SinkDir}, []string{"dir"}},
		{config.FormatMbox, []string{config.SinkDir}, []string{"mbox"}},
		{config.FormatBoth, []string{config.SinkDir}, []string{"dir", "mbox"}},
		{config.FormatEML, []string{config.SinkDir, config.SinkMbox}, []string{"dir", "mbox"}},
		{config.FormatBoth, []string{config.SinkMbox, config.SinkDir}, []string{"dir", "mbox"}},
	}
	for _, tc := range tests {
		t.Run(tc.format+"/"+strings.Join(tc.sinks, ","), func(t *testing.T) {
			cfg := config.Default()
			cfg.Sinks = tc.sinks
			dir := t.TempDir()

			m, err := Open(context.Background(), cfg, dir, tc.format, nil, nil)
			require.NoError(t, err)
			defer m.Close()

			var names []string
			for _, s := range m.sinks {
				names = append(names, s.Name())
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestOpen_WritesArchiveAlongsideFiles(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()

	m, err := Open(context.Background(), cfg, dir, config.FormatBoth, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Put(context.Background(), testFixture(t, "bulk_email_0001", "<1@example.com>")))
	require.NoError(t, m.Close())

	assert.FileExists(t, filepath.Join(dir, "bulk_email_0001.eml"))
	assert.FileExists(t, filepath.Join(dir, cfg.Output.Mbox))
}

func TestOpen_UnknownSink(t *testing.T) {
	cfg := config.Default()
	cfg.Sinks = []string{config.SinkDir, "fax"}
	_, err := Open(context.Background(), cfg, t.TempDir(), config.FormatEML, nil, nil)
	assert.ErrorContains(t, err, "unknown sink: fax")
}

func TestOpen_NetworkSinksAreLazy(t *testing.T) {
	cfg := config.Default()
	cfg.Sinks = []string{config.SinkSMTP, config.SinkIMAP}
	cfg.SMTP.Host, cfg.SMTP.Port = "127.0.0.1", 1
	cfg.IMAP.Host, cfg.IMAP.Port = "127.0.0.1", 1

	m, err := Open(context.Background(), cfg, t.TempDir(), config.FormatEML, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.NoError(t, m.Close())
}
