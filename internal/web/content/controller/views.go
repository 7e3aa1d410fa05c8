package controller

import (
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
)

// PinnedLabel marks important disclosures in the public list.
const PinnedLabel = "공지"

// SectionView is a localized Section.
type SectionView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description []string `json:"description"`
	Image       string   `json:"image,omitempty"`
}

func newSectionView(lang model.Lang, s model.Section) (v SectionView, err error) {
	if err = copier.Copy(&v, &s); err != nil {
		return v, errors.Wrap(err, "copy section")
	}

	v.Title = model.Pick(lang, s.TitleKo, s.TitleEn)
	v.Description = model.PickSlice(lang, s.DescriptionKo, s.DescriptionEn)
	return v, nil
}

// MemberView is a localized LeadershipMember.
type MemberView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Position   string   `json:"position"`
	Category   string   `json:"category"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
	Image      string   `json:"image,omitempty"`
}

// MemberGroup is one leadership category with its members in display order.
type MemberGroup struct {
	Category string       `json:"category"`
	Members  []MemberView `json:"members"`
}

func newMemberView(lang model.Lang, m model.LeadershipMember) (v MemberView, err error) {
	if err = copier.Copy(&v, &m); err != nil {
		return v, errors.Wrap(err, "copy leadership member")
	}

	v.Name = model.Pick(lang, m.NameKo, m.NameEn)
	v.Position = model.Pick(lang, m.PositionKo, m.PositionEn)
	v.Experience = model.PickSlice(lang, m.ExperienceKo, m.ExperienceEn)
	v.Education = model.PickSlice(lang, m.EducationKo, m.EducationEn)
	return v, nil
}

// groupMembers groups already sorted members by category priority, empty groups are omitted.
func groupMembers(lang model.Lang, members []model.LeadershipMember) ([]MemberGroup, error) {
	byCategory := map[string][]MemberView{}
	for _, m := range members {
		v, err := newMemberView(lang, m)
		if err != nil {
			return nil, err
		}
		byCategory[m.Category] = append(byCategory[m.Category], v)
	}

	groups := []MemberGroup{}
	for _, c := range model.LeadershipCategories {
		if len(byCategory[c]) == 0 {
			continue
		}
		groups = append(groups, MemberGroup{Category: c, Members: byCategory[c]})
	}

	return groups, nil
}

// ContactView is a localized Contact.
type ContactView struct {
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Fax           string `json:"fax,omitempty"`
	Email         string `json:"email"`
	MapURL        string `json:"mapUrl,omitempty"`
	BusinessHours string `json:"businessHours,omitempty"`
}

func newContactView(lang model.Lang, c model.Contact) (v ContactView, err error) {
	if err = copier.Copy(&v, &c); err != nil {
		return v, errors.Wrap(err, "copy contact")
	}

	v.Address = model.Pick(lang, c.AddressKo, c.AddressEn)
	v.BusinessHours = model.Pick(lang, c.BusinessHoursKo, c.BusinessHoursEn)
	return v, nil
}

// InvestmentView is a localized InvestmentEntry.
type InvestmentView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newInvestmentView(lang model.Lang, e model.InvestmentEntry) (v InvestmentView, err error) {
	if err = copier.Copy(&v, &e); err != nil {
		return v, errors.Wrap(err, "copy investment entry")
	}

	v.Title = model.Pick(lang, e.Title, e.TitleEn)
	v.Description = model.Pick(lang, e.Description, e.DescriptionEn)
	return v, nil
}

// ArticleView is a localized news or disclosure item.
type ArticleView struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Images      []model.Attachment `json:"images"`
	Files       []model.Attachment `json:"files"`
	Date        string             `json:"date"`
	IsImportant bool               `json:"isImportant,omitempty"`
	// Label is PinnedLabel for pinned disclosures.
	Label string `json:"label,omitempty"`
}

func newArticleView(lang model.Lang, a model.Article) (v ArticleView, err error) {
	if err = copier.Copy(&v, &a); err != nil {
		return v, errors.Wrap(err, "copy article")
	}

	v.Title = model.Pick(lang, a.Title, a.TitleEn)
	v.Content = model.Pick(lang, a.Content, a.ContentEn)
	if v.Images == nil {
		v.Images = []model.Attachment{}
	}
	if v.Files == nil {
		v.Files = []model.Attachment{}
	}

	date := model.ParseDate(a.PublishDate)
	if date.IsZero() {
		date = a.CreatedTime()
	}
	if !date.IsZero() {
		v.Date = date.Format(time.DateOnly)
	}

	return v, nil
}

func newArticleViews(lang model.Lang, items []model.Article) ([]ArticleView, error) {
	out := make([]ArticleView, 0, len(items))
	for _, a := range items {
		v, err := newArticleView(lang, a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

// newArticlePage localizes page, pinned items get PinnedLabel.
func newArticlePage(lang model.Lang, page ordering.Page[model.Article]) (out ordering.Page[ArticleView], err error) {
	out = ordering.Page[ArticleView]{
		Page:              page.Page,
		PageSize:          page.PageSize,
		EffectivePageSize: page.EffectivePageSize,
		TotalPages:        page.TotalPages,
		TotalItems:        page.TotalItems,
		Offset:            page.Offset,
	}
	if out.Pinned, err = newArticleViews(lang, page.Pinned); err != nil {
		return out, err
	}
	for i := range out.Pinned {
		out.Pinned[i].Label = PinnedLabel
	}
	if out.Items, err = newArticleViews(lang, page.Items); err != nil {
		return out, err
	}

	return out, nil
}

// DetailView is one label/value row of a portfolio item.
type DetailView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PortfolioItemView is a localized PortfolioItem.
type PortfolioItemView struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Image    string       `json:"image,omitempty"`
	Rows     []DetailView `json:"details"`
}

// PortfolioGroup is one category tab of the portfolio page.
type PortfolioGroup struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Items []PortfolioItemView `json:"items"`
}

// StatusView is one localized operational status row.
type StatusView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PortfolioView is the localized portfolio page.
type PortfolioView struct {
	Groups            []PortfolioGroup `json:"groups"`
	OperationalStatus []StatusView     `json:"operationalStatus"`
	TotalAmount       string           `json:"totalAmount"`
	AsOf              string           `json:"asOf,omitempty"`
}

// newPortfolioView groups visible items under their category in category order.
func newPortfolioView(lang model.Lang, data *model.PortfolioData, visible []model.PortfolioItem) (*PortfolioView, error) {
	view := &PortfolioView{
		Groups:            []PortfolioGroup{},
		OperationalStatus: []StatusView{},
		TotalAmount:       model.Pick(lang, data.Summary.TotalAmount.ValueKo, data.Summary.TotalAmount.ValueEn),
		AsOf:              data.Summary.TotalAmount.AsOf,
	}
	for _, s := range data.Summary.OperationalStatus.Items {
		view.OperationalStatus = append(view.OperationalStatus, StatusView{
			Label: model.Pick(lang, s.LabelKo, s.LabelEn),
			Value: model.Pick(lang, s.ValueKo, s.ValueEn),
		})
	}

	index := map[string]int{}
	for _, c := range data.Categories {
		index[c.ID] = len(view.Groups)
		view.Groups = append(view.Groups, PortfolioGroup{ID: c.ID, Label: c.Label, Items: []PortfolioItemView{}})
	}

	for _, item := range visible {
		i, ok := index[item.Category]
		if !ok {
			continue
		}

		var v PortfolioItemView
		if err := copier.Copy(&v, &item); err != nil {
			return nil, errors.Wrap(err, "copy portfolio item")
		}
		v.Title = model.Pick(lang, item.TitleKo, item.TitleEn)
		v.Rows = []DetailView{}
		for _, l := range data.Labels {
			value := item.Detail(l.ID).In(lang)
			if value == "" {
				continue
			}
			v.Rows = append(v.Rows, DetailView{ID: l.ID, Label: l.Label, Value: value})
		}

		view.Groups[i].Items = append(view.Groups[i].Items, v)
	}

	return view, nil
}
