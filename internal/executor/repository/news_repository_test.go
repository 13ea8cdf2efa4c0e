package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/pkg/logger"
)

const rssPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>FPT</title>
<item><title>FPT lãi quý 3 tăng 20% - VnExpress</title><pubDate>Tue, 01 Oct 2024 08:00:00 +0700</pubDate></item>
<item><title>&lt;b&gt;FPT&lt;/b&gt; ký hợp đồng AI mới - CafeF</title><pubDate>Thu, 03 Oct 2024 08:00:00 +0700</pubDate></item>
<item><title>FPT lãi quý 3 tăng 20% - Tuổi Trẻ</title><pubDate>Mon, 30 Sep 2024 08:00:00 +0700</pubDate></item>
<item><title>Cổ phiếu công nghệ hồi phục - VnEconomy</title><pubDate>Wed, 02 Oct 2024 08:00:00 +0700</pubDate></item>
</channel></rss>`

func TestRSSNewsRepository_GetHeadlines(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssPayload))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.News.FeedURL = srv.URL + "/rss?q=%s"
	repo := NewRSSNewsRepository(cfg, logger.NewNop())

	headlines, err := repo.GetHeadlines(context.Background(), "FPT", 3)
	require.NoError(t, err)

	assert.Equal(t, "FPT", gotQuery)
	assert.Equal(t, []string{
		"FPT ký hợp đồng AI mới",
		"Cổ phiếu công nghệ hồi phục",
		"FPT lãi quý 3 tăng 20%",
	}, headlines)
}

const undatedPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>HPG</title>
<item><title>HPG không rõ ngày đăng - Vietstock</title></item>
<item><title>HPG lãi kỷ lục - CafeF</title><pubDate>Tue, 01 Oct 2024 08:00:00 +0700</pubDate></item>
<item><title>HPG mở rộng Dung Quất - VnExpress</title><pubDate>Thu, 03 Oct 2024 08:00:00 +0700</pubDate></item>
</channel></rss>`

func TestRSSNewsRepository_UndatedItemsSortLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(undatedPayload))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.News.FeedURL = srv.URL + "/rss?q=%s"
	repo := NewRSSNewsRepository(cfg, logger.NewNop())

	headlines, err := repo.GetHeadlines(context.Background(), "HPG", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"HPG mở rộng Dung Quất",
		"HPG lãi kỷ lục",
		"HPG không rõ ngày đăng",
	}, headlines)

	headlines, err = repo.GetHeadlines(context.Background(), "HPG", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"HPG mở rộng Dung Quất", "HPG lãi kỷ lục"}, headlines)
}

func TestRSSNewsRepository_NonPositiveLimit(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(rssPayload))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.News.FeedURL = srv.URL + "/rss?q=%s"
	repo := NewRSSNewsRepository(cfg, logger.NewNop())

	for _, limit := range []int{0, -1} {
		headlines, err := repo.GetHeadlines(context.Background(), "FPT", limit)
		require.NoError(t, err)
		assert.Empty(t, headlines)
	}
	assert.Zero(t, hits)
}

func TestCleanHeadline(t *testing.T) {
	assert.Equal(t, "VNM chia cổ tức", cleanHeadline("  <i>VNM</i>   chia cổ tức - Báo Đầu Tư "))
	assert.Equal(t, "", cleanHeadline("   "))
}
