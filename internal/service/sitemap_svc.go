package service

import (
	"context"
	"encoding/xml"
	"time"

	"storefront_dev_v1/internal/repository"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapService 生成 sitemap.xml：首页、每个店铺及其已发布商品
type SitemapService struct {
	storeRepo repository.StoreRepository
	links     StorefrontLinks
}

func NewSitemapService(storeRepo repository.StoreRepository, links StorefrontLinks) *SitemapService {
	return &SitemapService{storeRepo: storeRepo, links: links}
}

// Build 返回完整 XML 文档
func (s *SitemapService) Build(ctx context.Context) ([]byte, error) {
	stores, err := s.storeRepo.ListSitemapEntries(ctx)
	if err != nil {
		return nil, Internal("list sitemap entries", err)
	}

	set := sitemapURLSet{XMLNS: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{Loc: s.links.Home(), ChangeFreq: "daily", Priority: "1.0"})
	for _, st := range stores {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.links.Store(st.Slug),
			LastMod:    lastMod(st.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
		for _, p := range st.Products {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        s.links.Product(st.Slug, p.Slug),
				LastMod:    lastMod(p.UpdatedAt),
				ChangeFreq: "weekly",
				Priority:   "0.6",
			})
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, Internal("encode sitemap", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
