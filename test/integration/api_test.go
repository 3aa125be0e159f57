// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/parleychat/parley/internal/access"
	"github.com/parleychat/parley/internal/auth"
	authpg "github.com/parleychat/parley/internal/auth/postgres"
	"github.com/parleychat/parley/internal/chat"
	chatpg "github.com/parleychat/parley/internal/chat/postgres"
	"github.com/parleychat/parley/internal/httpapi"
)

var _ = Describe("Parley API", Ordered, func() {
	var (
		srv     *httpapi.Server
		baseURL string
		client  *http.Client
	)

	// call issues a request with an optional bearer token and JSON body,
	// returning the status and decoded body.
	call := func(method, path, token string, payload any) (int, map[string]any) {
		GinkgoHelper()

		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			Expect(err).NotTo(HaveOccurred())
			body = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, baseURL+path, body)
		Expect(err).NotTo(HaveOccurred())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var decoded map[string]any
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 {
			Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		}
		return resp.StatusCode, decoded
	}

	register := func(username, password string) (int, map[string]any) {
		return call(http.MethodPost, "/v1/auth/register", "",
			map[string]string{"username": username, "password": password})
	}

	login := func(username, password string) string {
		GinkgoHelper()
		status, body := call(http.MethodPost, "/v1/auth/login", "",
			map[string]string{"username": username, "password": password})
		Expect(status).To(Equal(http.StatusOK))
		token, _ := body["token"].(string)
		Expect(token).To(HaveLen(auth.TokenBytes * 2))
		return token
	}

	BeforeAll(func() {
		accounts := authpg.NewAccountRepository(testPool)
		sessions := authpg.NewSessionRepository(testPool)
		servers := chatpg.NewServerRepository(testPool)
		members := chatpg.NewMemberRepository(testPool)
		messages := chatpg.NewMessageRepository(testPool)
		invites := chatpg.NewInviteRepository(testPool)

		authSvc, err := auth.NewService(accounts, sessions, auth.NewArgon2idHasher())
		Expect(err).NotTo(HaveOccurred())
		gate, err := access.NewGate(authSvc, members)
		Expect(err).NotTo(HaveOccurred())

		serverSvc, err := chat.NewServerService(servers, gate)
		Expect(err).NotTo(HaveOccurred())
		inviteSvc, err := chat.NewInviteService(invites, servers, gate)
		Expect(err).NotTo(HaveOccurred())
		memberSvc, err := chat.NewMemberService(members, gate)
		Expect(err).NotTo(HaveOccurred())
		messageSvc, err := chat.NewMessageService(messages, gate)
		Expect(err).NotTo(HaveOccurred())

		srv, err = httpapi.NewServer(httpapi.Options{Addr: "127.0.0.1:0"}, httpapi.Deps{
			Auth:     authSvc,
			Gate:     gate,
			Servers:  serverSvc,
			Invites:  inviteSvc,
			Members:  memberSvc,
			Messages: messageSvc,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = srv.Start()
		Expect(err).NotTo(HaveOccurred())
		baseURL = "http://" + srv.Addr()
		client = &http.Client{Timeout: 10 * time.Second}
	})

	AfterAll(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(srv.Stop(ctx)).To(Succeed())
	})

	var (
		aliceToken string
		bobToken   string
		serverID   string
		inviteCode string
	)

	It("registers alice", func() {
		status, body := register("alice", "sw0rdfish!")
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body["username"]).To(Equal("alice"))
		Expect(body["id"]).NotTo(BeEmpty())
	})

	It("rejects a duplicate username", func() {
		status, _ := register("alice", "another-pass")
		Expect(status).To(Equal(http.StatusConflict))

		// Case-insensitive: ALICE collides with alice.
		status, _ = register("ALICE", "another-pass")
		Expect(status).To(Equal(http.StatusConflict))
	})

	It("logs alice in", func() {
		aliceToken = login("alice", "sw0rdfish!")
	})

	It("rejects a wrong password", func() {
		status, _ := call(http.MethodPost, "/v1/auth/login", "",
			map[string]string{"username": "alice", "password": "not-the-password"})
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("creates a server owned by alice", func() {
		status, body := call(http.MethodPost, "/v1/server", aliceToken,
			map[string]string{"name": "General", "description": "the hangout"})
		Expect(status).To(Equal(http.StatusCreated))
		serverID, _ = body["id"].(string)
		Expect(serverID).NotTo(BeEmpty())

		status, body = call(http.MethodGet, "/v1/server", aliceToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		servers, _ := body["servers"].([]any)
		Expect(servers).To(HaveLen(1))
	})

	It("mints an invite code", func() {
		status, body := call(http.MethodPost, "/v1/invite", aliceToken,
			map[string]string{"server": serverID})
		Expect(status).To(Equal(http.StatusCreated))
		inviteCode, _ = body["code"].(string)
		Expect(inviteCode).To(HaveLen(chat.InviteCodeLength))
	})

	It("registers and logs bob in", func() {
		status, _ := register("bob", "hunter2hunter2")
		Expect(status).To(Equal(http.StatusCreated))
		bobToken = login("bob", "hunter2hunter2")
	})

	It("denies bob posting before joining", func() {
		status, _ := call(http.MethodPost, "/v1/message", bobToken,
			map[string]string{"server": serverID, "content": "early"})
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("denies bob minting invites for alice's server", func() {
		status, _ := call(http.MethodPost, "/v1/invite", bobToken,
			map[string]string{"server": serverID})
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("lets bob join by invite code, idempotently", func() {
		status, body := call(http.MethodPost, "/v1/member", bobToken,
			map[string]string{"code": inviteCode})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["id"]).To(Equal(serverID))

		// Redeeming again is a successful no-op.
		status, _ = call(http.MethodPost, "/v1/member", bobToken,
			map[string]string{"code": inviteCode})
		Expect(status).To(Equal(http.StatusOK))
	})

	It("rejects an unknown invite code", func() {
		status, _ := call(http.MethodPost, "/v1/member", bobToken,
			map[string]string{"code": "ZZZZZZ"})
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("lets members exchange messages", func() {
		status, _ := call(http.MethodPost, "/v1/message", aliceToken,
			map[string]string{"server": serverID, "content": "welcome"})
		Expect(status).To(Equal(http.StatusCreated))

		status, _ = call(http.MethodPost, "/v1/message", bobToken,
			map[string]string{"server": serverID, "content": "hi"})
		Expect(status).To(Equal(http.StatusCreated))
	})

	It("lists messages newest first with author usernames", func() {
		status, body := call(http.MethodGet, "/v1/message?server="+serverID, aliceToken, nil)
		Expect(status).To(Equal(http.StatusOK))

		messages, _ := body["messages"].([]any)
		Expect(len(messages)).To(BeNumerically(">=", 2))

		newest, _ := messages[0].(map[string]any)
		Expect(newest["content"]).To(Equal("hi"))
		Expect(newest["author_username"]).To(Equal("bob"))

		second, _ := messages[1].(map[string]any)
		Expect(second["content"]).To(Equal("welcome"))
		Expect(second["author_username"]).To(Equal("alice"))
	})

	It("honors limit and offset", func() {
		status, body := call(http.MethodGet,
			fmt.Sprintf("/v1/message?server=%s&limit=1", serverID), aliceToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		messages, _ := body["messages"].([]any)
		Expect(messages).To(HaveLen(1))

		status, body = call(http.MethodGet,
			fmt.Sprintf("/v1/message?server=%s&limit=1&offset=1", serverID), aliceToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		messages, _ = body["messages"].([]any)
		Expect(messages).To(HaveLen(1))
		first, _ := messages[0].(map[string]any)
		Expect(first["content"]).To(Equal("welcome"))
	})

	It("restricts edits and deletes to the author", func() {
		status, body := call(http.MethodPost, "/v1/message", bobToken,
			map[string]string{"server": serverID, "content": "tpyo"})
		Expect(status).To(Equal(http.StatusCreated))
		messageID, _ := body["id"].(string)

		// Alice is a member but not the author.
		status, _ = call(http.MethodPatch, "/v1/message", aliceToken,
			map[string]string{"id": messageID, "content": "hijacked"})
		Expect(status).To(Equal(http.StatusForbidden))

		status, body = call(http.MethodPatch, "/v1/message", bobToken,
			map[string]string{"id": messageID, "content": "typo"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["content"]).To(Equal("typo"))

		status, _ = call(http.MethodDelete, "/v1/message", aliceToken,
			map[string]string{"id": messageID})
		Expect(status).To(Equal(http.StatusForbidden))

		status, _ = call(http.MethodDelete, "/v1/message", bobToken,
			map[string]string{"id": messageID})
		Expect(status).To(Equal(http.StatusNoContent))
	})

	It("restricts server updates to the owner", func() {
		status, _ := call(http.MethodPatch, "/v1/server", bobToken,
			map[string]any{"id": serverID, "name": "Bob's now"})
		Expect(status).To(Equal(http.StatusForbidden))

		status, body := call(http.MethodPatch, "/v1/server", aliceToken,
			map[string]any{"id": serverID, "description": "renovated"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["description"]).To(Equal("renovated"))
	})

	It("lets bob leave, revoking member access", func() {
		status, _ := call(http.MethodDelete, "/v1/member", bobToken,
			map[string]string{"server": serverID})
		Expect(status).To(Equal(http.StatusNoContent))

		status, _ = call(http.MethodPost, "/v1/message", bobToken,
			map[string]string{"server": serverID, "content": "still here?"})
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("revokes tokens on logout, idempotently", func() {
		status, _ := call(http.MethodPost, "/v1/auth/logout", bobToken, nil)
		Expect(status).To(Equal(http.StatusNoContent))

		status, _ = call(http.MethodGet, "/v1/server", bobToken, nil)
		Expect(status).To(Equal(http.StatusUnauthorized))

		// Logging out again, or with no token at all, still succeeds.
		status, _ = call(http.MethodPost, "/v1/auth/logout", bobToken, nil)
		Expect(status).To(Equal(http.StatusNoContent))
		status, _ = call(http.MethodPost, "/v1/auth/logout", "", nil)
		Expect(status).To(Equal(http.StatusNoContent))
	})

	It("rejects requests without a token", func() {
		status, _ := call(http.MethodGet, "/v1/server", "", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("deletes a server and everything in it", func() {
		status, _ := call(http.MethodDelete, "/v1/server", aliceToken,
			map[string]string{"id": serverID})
		Expect(status).To(Equal(http.StatusNoContent))

		status, _ = call(http.MethodGet, "/v1/message?server="+serverID, aliceToken, nil)
		Expect(status).To(Equal(http.StatusForbidden))
	})
})
