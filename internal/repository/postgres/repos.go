package postgres

import (
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

var (
	_ application.Repository = (*ApplicationRepo)(nil)
	_ member.Repository      = (*MemberRepo)(nil)
	_ specialist.Repository  = (*SpecialistRepo)(nil)
	_ newsletter.Repository  = (*NewsletterRepo)(nil)
	_ newsletter.Recipients  = (*SubscriberRepo)(nil)
	_ subscriber.Repository  = (*SubscriberRepo)(nil)
	_ publication.Repository = (*PublicationRepo)(nil)
)
