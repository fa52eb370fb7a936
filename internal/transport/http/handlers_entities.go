package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"discordcore/internal/entity"
	"discordcore/internal/resolve"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/httputil"
	"discordcore/pkg/requestcontext"
)

// Handler renders entities resolved through the resolution context.
type Handler struct {
	resolver    entity.Resolver
	logger      *slog.Logger
	concurrency int
}

// NewHandler creates the entity handler. concurrency bounds role lookups per request.
func NewHandler(resolver entity.Resolver, logger *slog.Logger, concurrency int) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if concurrency < 1 {
		concurrency = entity.DefaultConcurrency
	}
	return &Handler{resolver: resolver, logger: logger, concurrency: concurrency}
}

// Register registers the entity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/guilds/{guildID}", h.handleGetGuild)
	r.Get("/guilds/{guildID}/emojis/{emojiID}", h.handleGetEmoji)
	r.Get("/users/{userID}", h.handleGetUser)
}

func (h *Handler) handleGetEmoji(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	guildID, ok := h.pathID(w, r, "guildID")
	if !ok {
		return
	}
	emojiID, ok := h.pathID(w, r, "emojiID")
	if !ok {
		return
	}

	emoji, err := entity.ResolveOne[*entity.GuildEmoji](ctx, h.resolver, domain.KindEmoji, emojiID, guildID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := emojiView{
		ID:            emojiID,
		Name:          emoji.Name(),
		Mention:       emoji.Mention(),
		ImageURL:      emoji.ImageURL(),
		Animated:      emoji.Animated(),
		Managed:       emoji.Managed(),
		RequireColons: emoji.RequireColons(),
		Guild:         guildRef{ID: guildID},
	}
	if available, ok := emoji.Available(); ok {
		view.Available = &available
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		guild, err := emoji.Guild(gctx)
		if err != nil {
			return err
		}
		view.Guild.Name = guild.Name()
		return nil
	})
	g.Go(func() error {
		creator, err := h.creator(gctx, emoji)
		if err != nil {
			return err
		}
		view.Creator = creator
		return nil
	})
	g.Go(func() error {
		var roles []*entity.Role
		stream := emoji.Roles(gctx, entity.WithPolicy(entity.CollectAll), entity.WithConcurrency(h.concurrency))
		for role, err := range stream {
			if err != nil {
				// a whitelist can outlive a deleted role
				if resolve.IsNotFound(err) {
					continue
				}
				return err
			}
			roles = append(roles, role)
		}
		view.Roles = roleViews(roles)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

// creator prefers the user embedded in the emoji payload and falls back to
// resolving it. A creator that no longer exists is omitted.
func (h *Handler) creator(ctx context.Context, emoji *entity.GuildEmoji) (*userView, error) {
	if u, ok := emoji.Creator(); ok {
		return newUserView(u)
	}
	if _, ok := emoji.UserID(); !ok {
		return nil, nil
	}
	u, err := emoji.User(ctx)
	if resolve.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return newUserView(u)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	user, err := entity.ResolveOne[*entity.User](r.Context(), h.resolver, domain.KindUser, userID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := newUserView(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGetGuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	guildID, ok := h.pathID(w, r, "guildID")
	if !ok {
		return
	}
	guild, err := entity.ResolveOne[*entity.Guild](ctx, h.resolver, domain.KindGuild, guildID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := guildView{
		ID:     guildID,
		Name:   guild.Name(),
		Roles:  roleViews(guild.Roles()),
		Emojis: []string{},
	}
	for _, e := range guild.Emojis() {
		view.Emojis = append(view.Emojis, e.Mention())
	}
	owner, err := guild.Owner(ctx)
	switch {
	case err == nil:
		if view.Owner, err = newUserView(owner); err != nil {
			h.writeError(w, r, err)
			return
		}
	case !resolve.IsNotFound(err):
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (domain.Snowflake, bool) {
	id, err := domain.ParseSnowflake(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, param+": "+err.Error())
		return 0, false
	}
	return id, true
}

// writeError maps resolution failures onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var (
		failure      *resolve.ResolutionFailure
		inconsistent *entity.InconsistentDataError
	)
	switch {
	case errors.Is(err, resolve.ErrInvalidRequest):
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, err.Error())
	case resolve.IsNotFound(err):
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "entity not found")
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &failure) && failure.Category == resolve.CategoryTimeout:
		h.logger.WarnContext(ctx, "upstream timeout", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, http.StatusGatewayTimeout, httputil.CodeTimeout, "")
	case errors.As(err, &failure):
		h.logger.WarnContext(ctx, "upstream failure",
			"error", err,
			"category", failure.Category,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, http.StatusBadGateway, httputil.CodeUpstream, "")
	case errors.As(err, &inconsistent):
		h.logger.ErrorContext(ctx, "inconsistent entity data", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, http.StatusBadGateway, httputil.CodeUpstream, "")
	default:
		h.logger.ErrorContext(ctx, "request failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "")
	}
}
