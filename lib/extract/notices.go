package extract

import (
	"campusassist-backend/lib/htmlutil"
	"campusassist-backend/lib/records"

	"github.com/PuerkitoBio/goquery"
)

// attachmentsFrom reads the .attachment anchors under an item block.
// Size text sits in a sibling .attachment-size span when present.
func attachmentsFrom(sel *goquery.Selection, namespace string) []records.Attachment {
	var attachments []records.Attachment
	sel.Find(".attachment").Each(func(ordinal int, item *goquery.Selection) {
		link := item.Find("a").First()
		name := htmlutil.CleanText(link.Text())
		attachment := records.Attachment{
			Id:        item.AttrOr("data-attachment-id", ""),
			Name:      name,
			Url:       link.AttrOr("href", ""),
			SizeBytes: ParseSize(item.Find(".attachment-size").First().Text()),
			MimeType:  MimeFromName(name),
		}
		if attachment.Id == "" {
			attachment.Id = SyntheticId(namespace+"-attachment", ordinal)
		}
		attachments = append(attachments, attachment)
	})
	return attachments
}

// notice markup signature: a .notice-board container of .notice-item
// rows. The container is required, notice boards always render their
// table shell even when empty, so a missing shell means a broken or
// unexpected page.
func noticeSchema(platform records.Platform) schema[records.Notice] {
	return schema[records.Notice]{
		container: ".notice-board",
		required:  true,
		item:      ".notice-item",
		fields: []Field[records.Notice]{
			{
				Name: "id", Attr: "data-notice-id",
				Set: func(r *records.Notice, raw string) { r.Id = raw },
			},
			{
				Name: "title", Selector: ".notice-title",
				Set: func(r *records.Notice, raw string) { r.Title = raw },
			},
			{
				Name: "body", Selector: ".notice-body",
				Set: func(r *records.Notice, raw string) { r.Body = raw },
			},
			{
				Name: "author", Selector: ".notice-author",
				Set: func(r *records.Notice, raw string) { r.Author = raw },
			},
			{
				Name: "published", Selector: ".notice-date",
				Set: func(r *records.Notice, raw string) { r.PublishedAt = ParseDate(raw) },
			},
			{
				Name: "views", Selector: ".notice-views",
				Set: func(r *records.Notice, raw string) { r.Views = ParseInt(raw) },
			},
		},
		post: func(sel *goquery.Selection, r *records.Notice, ordinal int) {
			r.Important = sel.HasClass("notice-important") ||
				sel.Find(".notice-badge").Length() > 0
			r.Attachments = attachmentsFrom(sel, "notice")
			if r.Id == "" {
				r.Id = SyntheticId("notice", ordinal)
			}
			r.Platform = platform
		},
	}
}

func Notices(html string, platform records.Platform) ([]records.Notice, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return noticeSchema(platform).extract(doc, "notice")
}
